package repositories

import (
	"context"
	"errors"

	"kort.link/configs"
	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ISessionRepository oturum veritabanı işlemleri için arayüz.
type ISessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint) (*models.Session, error)
	FindByPublicCode(ctx context.Context, code string) (*models.Session, error)
	FindByHostSlug(ctx context.Context, slug string) (*models.Session, error)
	FindAllByHostPaginated(ctx context.Context, hostUserID uint, params queryparams.ListParams) ([]models.Session, int64, error)
	Update(ctx context.Context, session *models.Session) error
	UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error
	CountByHost(ctx context.Context, hostUserID uint) (int64, error)
}

// SessionRepository ISessionRepository arayüzünü uygular.
type SessionRepository struct {
	BaseRepository
	db *gorm.DB
}

// NewSessionRepository yeni bir SessionRepository örneği oluşturur.
func NewSessionRepository() ISessionRepository {
	return newSessionRepository(configs.GetDB())
}

// NewSessionRepositoryTx transaction içinde çalışan örnek oluşturur.
func NewSessionRepositoryTx(tx *gorm.DB) ISessionRepository {
	return newSessionRepository(tx)
}

func newSessionRepository(db *gorm.DB) *SessionRepository {
	r := &SessionRepository{db: db}
	r.SetAllowedSortColumns(map[string]string{
		"id":         "sessions.id",
		"created_at": "sessions.created_at",
		"starts_at":  "sessions.starts_at",
		"status":     "sessions.status",
		"title":      "sessions.title",
	})
	return r
}

func (r *SessionRepository) getDB(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db)
}

// Create yeni bir oturum kaydeder. PublicCode/HostSlug çakışmaları
// ErrConflict olarak döner; çağıran yeni kod üretip tekrar dener.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session == nil || session.HostUserID == 0 {
		return errors.New("geçersiz oturum verisi")
	}
	return classifyWriteError(r.getDB(ctx).Create(session).Error)
}

// FindByID oturumu ID ile bulur.
func (r *SessionRepository) FindByID(ctx context.Context, id uint) (*models.Session, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Session ID")
	}
	var session models.Session
	err := r.getDB(ctx).Preload("Type").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SessionRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &session, nil
}

// FindByPublicCode misafirlerin kullandığı public kod ile oturumu bulur.
func (r *SessionRepository) FindByPublicCode(ctx context.Context, code string) (*models.Session, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	var session models.Session
	err := r.getDB(ctx).Preload("Type").Where("public_code = ?", code).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SessionRepository.FindByPublicCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &session, nil
}

// FindByHostSlug organizatör panel linkindeki slug ile oturumu bulur.
func (r *SessionRepository) FindByHostSlug(ctx context.Context, slug string) (*models.Session, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var session models.Session
	err := r.getDB(ctx).Preload("Type").Where("host_slug = ?", slug).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SessionRepository.FindByHostSlug: DB error", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &session, nil
}

// FindAllByHostPaginated organizatörün oturumlarını sayfalayarak getirir.
func (r *SessionRepository) FindAllByHostPaginated(ctx context.Context, hostUserID uint, params queryparams.ListParams) ([]models.Session, int64, error) {
	if hostUserID == 0 {
		return nil, 0, errors.New("geçersiz User ID")
	}
	var sessions []models.Session
	var totalCount int64
	db := r.getDB(ctx)

	query := db.Model(&models.Session{}).Where("sessions.host_user_id = ?", hostUserID)
	if params.Status != "" {
		query = query.Where("sessions.status = ?", params.Status)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("SessionRepository.Count: DB error", zap.Uint("hostUserID", hostUserID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return sessions, 0, nil
	}

	orderColumn := r.ResolveSortColumn(params.SortBy, "sessions.created_at")
	query = query.Order(orderColumn + " " + params.OrderBy).
		Preload("Type").
		Limit(params.PerPage).Offset(params.CalculateOffset())

	if err := query.Find(&sessions).Error; err != nil {
		configslog.Log.Error("SessionRepository.Find: DB error", zap.Uint("hostUserID", hostUserID), zap.Error(err))
		return nil, totalCount, err
	}
	return sessions, totalCount, nil
}

// Update oturumu kaydeder (Save).
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == 0 {
		return errors.New("güncellenecek oturum geçerli değil")
	}
	return classifyWriteError(r.getDB(ctx).Save(session).Error)
}

// UpdateStatus yalnızca yaşam döngüsü durumunu değiştirir.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error {
	if id == 0 {
		return errors.New("geçersiz Session ID")
	}
	result := r.getDB(ctx).Model(&models.Session{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByHost organizatörün toplam oturum sayısını döndürür.
func (r *SessionRepository) CountByHost(ctx context.Context, hostUserID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Session{}).Where("host_user_id = ?", hostUserID).Count(&count).Error
	return count, err
}

var _ ISessionRepository = (*SessionRepository)(nil)
