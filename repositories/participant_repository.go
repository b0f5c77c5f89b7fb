package repositories

import (
	"context"
	"errors"

	"kort.link/configs"
	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IParticipantRepository katılımcı veritabanı işlemleri için arayüz.
//
// Insert unique ihlalinde ErrConflict döndürür; bu, aynı kimlikle yarışan
// eşzamanlı bir join'in kazandığı anlamına gelir ve servis katmanı mevcut
// satırı yeniden sorgulayarak toparlanır.
type IParticipantRepository interface {
	Insert(ctx context.Context, participant *models.Participant) error
	FindByID(ctx context.Context, id uint) (*models.Participant, error)
	FindBySessionAndEmail(ctx context.Context, sessionID uint, email string) (*models.Participant, error)
	FindBySessionAndProfileID(ctx context.Context, sessionID uint, profileID string) (*models.Participant, error)
	FindBySessionAndGuestKey(ctx context.Context, sessionID uint, guestKey string) (*models.Participant, error)
	FindBySessionGuestKeyAndName(ctx context.Context, sessionID uint, guestKey, displayName string) (*models.Participant, error)
	CountConfirmed(ctx context.Context, sessionID uint) (int64, error)
	OldestWaitlisted(ctx context.Context, sessionID uint) (*models.Participant, error)
	ListBySession(ctx context.Context, sessionID uint) ([]models.Participant, error)
	Update(ctx context.Context, participant *models.Participant) error
	UpdateStatus(ctx context.Context, id uint, status models.ParticipantStatus) error
	HardDelete(ctx context.Context, id uint) error
}

// ParticipantRepository IParticipantRepository arayüzünü uygular.
type ParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository yeni bir ParticipantRepository örneği oluşturur.
func NewParticipantRepository() IParticipantRepository {
	return &ParticipantRepository{db: configs.GetDB()}
}

// NewParticipantRepositoryTx transaction içinde çalışan örnek oluşturur.
func NewParticipantRepositoryTx(tx *gorm.DB) IParticipantRepository {
	return &ParticipantRepository{db: tx}
}

func (r *ParticipantRepository) getDB(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db)
}

// Insert yeni katılımcı satırı ekler. Partial unique indexlere çarpan
// eşzamanlı duplicate insert ErrConflict olarak sınıflandırılır.
func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.Participant) error {
	if participant == nil || participant.SessionID == 0 {
		return errors.New("geçersiz katılımcı verisi")
	}
	return classifyWriteError(r.getDB(ctx).Create(participant).Error)
}

// FindByID katılımcıyı ID ile bulur.
func (r *ParticipantRepository) FindByID(ctx context.Context, id uint) (*models.Participant, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Participant ID")
	}
	var participant models.Participant
	err := r.getDB(ctx).First(&participant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// FindBySessionAndEmail giriş yapmış kimlikler için e-posta ile arama yapar.
// contact_email IS NOT NULL koşulu kimlik kapsamı invariantını korur:
// bu sorgu asla bir misafir satırı döndüremez.
func (r *ParticipantRepository) FindBySessionAndEmail(ctx context.Context, sessionID uint, email string) (*models.Participant, error) {
	if sessionID == 0 || email == "" {
		return nil, ErrNotFound
	}
	var participant models.Participant
	err := r.getDB(ctx).
		Where("session_id = ? AND contact_email = ?", sessionID, email).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindBySessionAndEmail: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// FindBySessionAndProfileID misafir kimlikleri için kanonik profil ID ile arar.
func (r *ParticipantRepository) FindBySessionAndProfileID(ctx context.Context, sessionID uint, profileID string) (*models.Participant, error) {
	if sessionID == 0 || profileID == "" {
		return nil, ErrNotFound
	}
	var participant models.Participant
	err := r.getDB(ctx).
		Where("session_id = ? AND profile_id = ?", sessionID, profileID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindBySessionAndProfileID: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// FindBySessionAndGuestKey ham guest key ile arar. Yalnızca profil ID'si
// henüz yazılmamış migration öncesi satırları bulmak için kullanılır.
func (r *ParticipantRepository) FindBySessionAndGuestKey(ctx context.Context, sessionID uint, guestKey string) (*models.Participant, error) {
	if sessionID == 0 || guestKey == "" {
		return nil, ErrNotFound
	}
	var participant models.Participant
	err := r.getDB(ctx).
		Where("session_id = ? AND guest_key = ?", sessionID, guestKey).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindBySessionAndGuestKey: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// FindBySessionGuestKeyAndName aynı guest key altında verilen görünen ada
// sahip satırı bulur. İsim değiştirmiş bir misafirin daha önce açılmış
// satırına dönmesini sağlar; birden fazla eşleşme varsa en eskisi alınır.
func (r *ParticipantRepository) FindBySessionGuestKeyAndName(ctx context.Context, sessionID uint, guestKey, displayName string) (*models.Participant, error) {
	if sessionID == 0 || guestKey == "" || displayName == "" {
		return nil, ErrNotFound
	}
	var participant models.Participant
	err := r.getDB(ctx).
		Where("session_id = ? AND guest_key = ? AND display_name = ?", sessionID, guestKey, displayName).
		Order("created_at asc").
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindBySessionGuestKeyAndName: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// CountConfirmed oturumdaki confirmed katılımcı sayısını döndürür.
// Kapasite kararı ve promotion bu sayıya göre verilir.
func (r *ParticipantRepository) CountConfirmed(ctx context.Context, sessionID uint) (int64, error) {
	if sessionID == 0 {
		return 0, errors.New("geçersiz Session ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Participant{}).
		Where("session_id = ? AND status = ?", sessionID, models.ParticipantStatusConfirmed).
		Count(&count).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.CountConfirmed: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// OldestWaitlisted bekleme listesindeki en eski katılımcıyı döndürür
// (created_at asc — FIFO sırası sunucu saatine göredir, istemciden gelmez).
func (r *ParticipantRepository) OldestWaitlisted(ctx context.Context, sessionID uint) (*models.Participant, error) {
	if sessionID == 0 {
		return nil, errors.New("geçersiz Session ID")
	}
	var participant models.Participant
	err := r.getDB(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.ParticipantStatusWaitlisted).
		Order("created_at asc").
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.OldestWaitlisted: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return &participant, nil
}

// ListBySession oturumun tüm katılımcılarını katılım sırasıyla getirir.
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.Participant, error) {
	if sessionID == 0 {
		return nil, errors.New("geçersiz Session ID")
	}
	var participants []models.Participant
	err := r.getDB(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&participants).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.ListBySession: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return participants, nil
}

// Update katılımcı satırını kaydeder (Save).
func (r *ParticipantRepository) Update(ctx context.Context, participant *models.Participant) error {
	if participant == nil || participant.ID == 0 {
		return errors.New("güncellenecek katılımcı geçerli değil")
	}
	return classifyWriteError(r.getDB(ctx).Save(participant).Error)
}

// UpdateStatus yalnızca durum alanını değiştirir (promotion için).
func (r *ParticipantRepository) UpdateStatus(ctx context.Context, id uint, status models.ParticipantStatus) error {
	if id == 0 {
		return errors.New("geçersiz Participant ID")
	}
	result := r.getDB(ctx).Model(&models.Participant{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDelete satırı kalıcı olarak siler (organizatör çıkarması).
// Pull-out akışı bunu kullanmaz; orada satır audit izi için kalır.
func (r *ParticipantRepository) HardDelete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("geçersiz Participant ID")
	}
	result := r.getDB(ctx).Unscoped().Delete(&models.Participant{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ IParticipantRepository = (*ParticipantRepository)(nil)
