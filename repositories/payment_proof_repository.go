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

// IPaymentProofRepository ödeme bildirimi veritabanı işlemleri için arayüz.
type IPaymentProofRepository interface {
	Create(ctx context.Context, proof *models.PaymentProof) error
	FindByID(ctx context.Context, id uint) (*models.PaymentProof, error)
	ListBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error)
	ListApprovedBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error)
	Update(ctx context.Context, proof *models.PaymentProof) error
}

// PaymentProofRepository IPaymentProofRepository arayüzünü uygular.
type PaymentProofRepository struct {
	db *gorm.DB
}

// NewPaymentProofRepository yeni bir PaymentProofRepository örneği oluşturur.
func NewPaymentProofRepository() IPaymentProofRepository {
	return &PaymentProofRepository{db: configs.GetDB()}
}

// NewPaymentProofRepositoryTx transaction içinde çalışan örnek oluşturur.
func NewPaymentProofRepositoryTx(tx *gorm.DB) IPaymentProofRepository {
	return &PaymentProofRepository{db: tx}
}

func (r *PaymentProofRepository) getDB(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db)
}

// Create yeni bir ödeme bildirimi kaydeder.
func (r *PaymentProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	if proof == nil || proof.SessionID == 0 {
		return errors.New("geçersiz ödeme bildirimi verisi")
	}
	return classifyWriteError(r.getDB(ctx).Create(proof).Error)
}

// FindByID bildirimi ID ile bulur.
func (r *PaymentProofRepository) FindByID(ctx context.Context, id uint) (*models.PaymentProof, error) {
	if id == 0 {
		return nil, errors.New("geçersiz PaymentProof ID")
	}
	var proof models.PaymentProof
	err := r.getDB(ctx).First(&proof, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("PaymentProofRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &proof, nil
}

// ListBySession oturumun tüm bildirimlerini (her durumda) getirir.
func (r *PaymentProofRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error) {
	if sessionID == 0 {
		return nil, errors.New("geçersiz Session ID")
	}
	var proofs []models.PaymentProof
	err := r.getDB(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&proofs).Error
	if err != nil {
		configslog.Log.Error("PaymentProofRepository.ListBySession: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return proofs, nil
}

// ListApprovedBySession yalnızca onaylanmış bildirimleri getirir;
// ödeme kapsamı mutabakatı bu liste üzerinden hesaplanır.
func (r *PaymentProofRepository) ListApprovedBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error) {
	if sessionID == 0 {
		return nil, errors.New("geçersiz Session ID")
	}
	var proofs []models.PaymentProof
	err := r.getDB(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.ProofStatusApproved).
		Order("created_at asc").
		Find(&proofs).Error
	if err != nil {
		configslog.Log.Error("PaymentProofRepository.ListApprovedBySession: DB error", zap.Uint("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return proofs, nil
}

// Update bildirimi kaydeder (Save).
func (r *PaymentProofRepository) Update(ctx context.Context, proof *models.PaymentProof) error {
	if proof == nil || proof.ID == 0 {
		return errors.New("güncellenecek ödeme bildirimi geçerli değil")
	}
	return classifyWriteError(r.getDB(ctx).Save(proof).Error)
}

var _ IPaymentProofRepository = (*PaymentProofRepository)(nil)
