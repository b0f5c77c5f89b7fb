package services

import (
	"context"
	"errors"
	"fmt"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceError kimlik doğrulama hataları.
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrInvalidCredentials AuthServiceError = "e-posta veya şifre hatalı"
	ErrEmailTaken         AuthServiceError = "bu e-posta zaten kayıtlı"
	ErrAuthInvalidInput   AuthServiceError = "geçersiz kayıt verisi"
)

// IAuthService organizatör hesap işlemleri için arayüz.
type IAuthService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthService IAuthService arayüzünü uygular.
type AuthService struct {
	repo repositories.IUserRepository
}

// NewAuthService yeni bir AuthService örneği oluşturur.
func NewAuthService() IAuthService {
	return &AuthService{repo: repositories.NewUserRepository()}
}

// Authenticate e-posta/şifre ile girişi doğrular.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register yeni organizatör hesabı oluşturur.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, ErrAuthInvalidInput
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: şifre en az 8 karakter olmalı", ErrAuthInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Register: şifre hashlenemedi", zap.Error(err))
		return nil, err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrEmailTaken
		}
		configslog.Log.Error("Register: kayıt başarısız", zap.Error(err))
		return nil, err
	}
	configslog.SLog.Infof("Yeni organizatör kaydı: %s (ID %d)", user.Email, user.ID)
	return user, nil
}

// GetUserByID kullanıcıyı ID ile getirir.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

var _ IAuthService = (*AuthService)(nil)
