package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/pkg/linkkey"
	"kort.link/pkg/queryparams"
	"kort.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionServiceError oturum servisi hataları.
type SessionServiceError string

func (e SessionServiceError) Error() string { return string(e) }

const (
	ErrSessionNotFound       SessionServiceError = "oturum bulunamadı"
	ErrSessionNotOpen        SessionServiceError = "oturum katılıma açık değil"
	ErrSessionAlreadyStarted SessionServiceError = "oturum başlamış, katılım kapandı"
	ErrSessionForbidden      SessionServiceError = "bu işlem için yetkiniz yok"
	ErrSessionInvalidInput   SessionServiceError = "geçersiz oturum verisi"
	ErrSessionCreationFailed SessionServiceError = "oturum oluşturulamadı"
	ErrSessionTypeNotFound   SessionServiceError = "spor dalı bulunamadı"
)

// publicCodeMaxAttempts kod çakışmasında kaç kez yeni kod deneneceği.
const publicCodeMaxAttempts = 5

// ISessionService oturum işlemleri için arayüz.
type ISessionService interface {
	// LoadJoinableSession public kod ile oturumu getirir ve katılım ön
	// koşullarını doğrular: oturum open durumda ve henüz başlamamış olmalı.
	LoadJoinableSession(ctx context.Context, publicCode string) (*models.Session, error)
	GetSessionByPublicCode(ctx context.Context, publicCode string) (*models.Session, error)
	GetSessionForHost(ctx context.Context, hostSlug string, hostUserID uint) (*models.Session, error)
	CreateSession(ctx context.Context, hostUserID uint, input SessionInput) (*models.Session, error)
	UpdateSession(ctx context.Context, hostSlug string, hostUserID uint, input SessionInput) (*models.Session, error)
	UpdateSessionStatus(ctx context.Context, hostSlug string, hostUserID uint, status models.SessionStatus) error
	GetSessionsForHost(ctx context.Context, hostUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
}

// SessionInput oturum oluşturma/güncelleme girdisi.
type SessionInput struct {
	TypeName          string
	Title             string
	Description       string
	LocationText      string
	LocationURL       string
	StartsAt          time.Time
	Capacity          *int
	WaitlistEnabled   bool
	PricePerHeadCents int64
	Currency          string
}

// SessionService ISessionService arayüzünü uygular.
type SessionService struct {
	repo     repositories.ISessionRepository
	typeRepo repositories.ITypeRepository
	now      func() time.Time
}

// NewSessionService yeni bir SessionService örneği oluşturur.
func NewSessionService() ISessionService {
	return &SessionService{
		repo:     repositories.NewSessionRepository(),
		typeRepo: repositories.NewTypeRepository(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateSessionInput(input SessionInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: başlık zorunludur", ErrSessionInvalidInput)
	}
	if input.StartsAt.IsZero() {
		return fmt.Errorf("%w: başlangıç zamanı zorunludur", ErrSessionInvalidInput)
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		return fmt.Errorf("%w: kapasite en az 1 olmalı", ErrSessionInvalidInput)
	}
	if input.PricePerHeadCents < 0 {
		return fmt.Errorf("%w: kişi başı ücret negatif olamaz", ErrSessionInvalidInput)
	}
	return nil
}

// LoadJoinableSession katılım akışlarının giriş kapısıdır; yan etkisi yoktur.
func (s *SessionService) LoadJoinableSession(ctx context.Context, publicCode string) (*models.Session, error) {
	session, err := s.GetSessionByPublicCode(ctx, publicCode)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusOpen {
		return nil, fmt.Errorf("%w (durum: %s)", ErrSessionNotOpen, session.Status)
	}
	if !s.now().Before(session.StartsAt) {
		return nil, ErrSessionAlreadyStarted
	}
	return session, nil
}

// GetSessionByPublicCode public kod ile oturumu getirir (durum kontrolü yapmaz).
func (s *SessionService) GetSessionByPublicCode(ctx context.Context, publicCode string) (*models.Session, error) {
	if publicCode == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.repo.FindByPublicCode(ctx, publicCode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// GetSessionForHost slug ile oturumu getirir ve sahipliği doğrular.
func (s *SessionService) GetSessionForHost(ctx context.Context, hostSlug string, hostUserID uint) (*models.Session, error) {
	session, err := s.repo.FindByHostSlug(ctx, hostSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.HostUserID != hostUserID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// CreateSession yeni bir oturum oluşturur. Public kod çakışırsa (unique
// index) sınırlı sayıda yeni kod üretilip tekrar denenir.
func (s *SessionService) CreateSession(ctx context.Context, hostUserID uint, input SessionInput) (*models.Session, error) {
	if hostUserID == 0 {
		return nil, fmt.Errorf("%w: geçersiz host ID", ErrSessionInvalidInput)
	}
	if err := validateSessionInput(input); err != nil {
		return nil, err
	}

	sportType, err := s.typeRepo.FindByName(ctx, input.TypeName)
	if err != nil {
		return nil, ErrSessionTypeNotFound
	}

	currency := input.Currency
	if currency == "" {
		currency = "TRY"
	}

	txCtx := models.ContextWithUserID(ctx, hostUserID)
	for attempt := 0; attempt < publicCodeMaxAttempts; attempt++ {
		code, keyErr := linkkey.Generate()
		if keyErr != nil {
			configslog.Log.Error("CreateSession: public kod üretilemedi", zap.Error(keyErr))
			return nil, ErrSessionCreationFailed
		}

		session := &models.Session{
			HostUserID:        hostUserID,
			TypeID:            sportType.ID,
			PublicCode:        code,
			HostSlug:          uuid.NewString(),
			Title:             input.Title,
			Description:       input.Description,
			LocationText:      input.LocationText,
			LocationURL:       input.LocationURL,
			StartsAt:          input.StartsAt,
			Status:            models.SessionStatusOpen,
			Capacity:          input.Capacity,
			WaitlistEnabled:   input.WaitlistEnabled,
			PricePerHeadCents: input.PricePerHeadCents,
			Currency:          currency,
		}

		err = s.repo.Create(txCtx, session)
		if err == nil {
			session.Type = *sportType
			configslog.SLog.Infof("Oturum oluşturuldu: ID %d, kod %s (host: %d)", session.ID, session.PublicCode, hostUserID)
			return session, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			configslog.Log.Error("CreateSession: DB error", zap.Error(err))
			return nil, ErrSessionCreationFailed
		}
		// Kod çakıştı, yeni kodla tekrar dene.
	}
	configslog.Log.Error("CreateSession: public kod üretim denemeleri tükendi", zap.Uint("hostUserID", hostUserID))
	return nil, ErrSessionCreationFailed
}

// UpdateSession oturum detaylarını günceller (yaşam döngüsü hariç).
func (s *SessionService) UpdateSession(ctx context.Context, hostSlug string, hostUserID uint, input SessionInput) (*models.Session, error) {
	if err := validateSessionInput(input); err != nil {
		return nil, err
	}
	session, err := s.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return nil, err
	}

	if input.TypeName != "" && input.TypeName != session.Type.Name {
		sportType, typeErr := s.typeRepo.FindByName(ctx, input.TypeName)
		if typeErr != nil {
			return nil, ErrSessionTypeNotFound
		}
		session.TypeID = sportType.ID
		session.Type = *sportType
	}

	session.Title = input.Title
	session.Description = input.Description
	session.LocationText = input.LocationText
	session.LocationURL = input.LocationURL
	session.StartsAt = input.StartsAt
	session.Capacity = input.Capacity
	session.WaitlistEnabled = input.WaitlistEnabled
	session.PricePerHeadCents = input.PricePerHeadCents
	if input.Currency != "" {
		session.Currency = input.Currency
	}

	txCtx := models.ContextWithUserID(ctx, hostUserID)
	if err := s.repo.Update(txCtx, session); err != nil {
		configslog.Log.Error("UpdateSession: DB error", zap.Uint("id", session.ID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// UpdateSessionStatus oturumun yaşam döngüsü durumunu değiştirir.
func (s *SessionService) UpdateSessionStatus(ctx context.Context, hostSlug string, hostUserID uint, status models.SessionStatus) error {
	switch status {
	case models.SessionStatusDraft, models.SessionStatusOpen, models.SessionStatusClosed,
		models.SessionStatusCompleted, models.SessionStatusCancelled:
	default:
		return fmt.Errorf("%w: bilinmeyen durum %q", ErrSessionInvalidInput, status)
	}
	session, err := s.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return err
	}
	txCtx := models.ContextWithUserID(ctx, hostUserID)
	if err := s.repo.UpdateStatus(txCtx, session.ID, status); err != nil {
		configslog.Log.Error("UpdateSessionStatus: DB error", zap.Uint("id", session.ID), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Oturum durumu güncellendi: ID %d -> %s", session.ID, status)
	return nil
}

// GetSessionsForHost organizatörün oturumlarını sayfalayarak getirir.
func (s *SessionService) GetSessionsForHost(ctx context.Context, hostUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if hostUserID == 0 {
		return nil, fmt.Errorf("%w: geçersiz host ID", ErrSessionInvalidInput)
	}
	params.Validate()

	sessions, totalCount, err := s.repo.FindAllByHostPaginated(ctx, hostUserID, params)
	if err != nil {
		return nil, err
	}
	return &queryparams.PaginatedResult{
		Data: sessions,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}, nil
}

var _ ISessionService = (*SessionService)(nil)
