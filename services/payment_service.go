package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/repositories"

	"go.uber.org/zap"
)

// PaymentServiceError ödeme servisi hataları.
type PaymentServiceError string

func (e PaymentServiceError) Error() string { return string(e) }

const (
	ErrProofNotFound         PaymentServiceError = "ödeme bildirimi bulunamadı"
	ErrProofInvalidInput     PaymentServiceError = "geçersiz ödeme bildirimi verisi"
	ErrProofAlreadyProcessed PaymentServiceError = "ödeme bildirimi zaten işlenmiş"
	ErrCoveredNotInSession   PaymentServiceError = "kapsanan katılımcı bu oturuma ait değil"
	ErrAlreadyPaid           PaymentServiceError = "katılımcının onaylı ödemesi zaten var"
)

// ProofInput misafirin gönderdiği ödeme bildirimi girdisi.
type ProofInput struct {
	CoveredIDs  []uint // boşsa yalnızca gönderen kapsanır
	ImageRef    string
	AmountCents int64
	Currency    string
}

// IPaymentService ödeme bildirimi ve kapsam mutabakatı için arayüz.
type IPaymentService interface {
	SubmitProof(ctx context.Context, publicCode string, identity models.Identity, input ProofInput) (*models.PaymentProof, error)
	ApproveProof(ctx context.Context, hostSlug string, proofID uint, hostUserID uint) error
	RejectProof(ctx context.Context, hostSlug string, proofID uint, hostUserID uint) error
	MarkCashPaid(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) (*models.PaymentProof, error)
	UnpaidParticipants(ctx context.Context, hostSlug string, hostUserID uint) ([]models.Participant, error)
	CoverageFor(ctx context.Context, hostSlug string, hostUserID uint, participantIDs []uint) (map[uint]*models.PaymentProof, error)
}

// PaymentService IPaymentService arayüzünü uygular.
type PaymentService struct {
	sessions     ISessionService
	participants repositories.IParticipantRepository
	repo         repositories.IPaymentProofRepository
	now          func() time.Time
}

// NewPaymentService yeni bir PaymentService örneği oluşturur.
func NewPaymentService() IPaymentService {
	return &PaymentService{
		sessions:     NewSessionService(),
		participants: repositories.NewParticipantRepository(),
		repo:         repositories.NewPaymentProofRepository(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// latestApprovedCoverage onaylı bildirimlerden katılımcı -> en güncel
// bildirim eşlemesini kurar. Her bildirimin covered-set'i taranır; legacy
// tekil participant_id her zaman kümeye dahildir. Aynı katılımcıyı birden
// fazla bildirim kapsıyorsa created_at'i en büyük olan kazanır.
func latestApprovedCoverage(proofs []models.PaymentProof) map[uint]*models.PaymentProof {
	coverage := make(map[uint]*models.PaymentProof)
	for i := range proofs {
		proof := &proofs[i]
		if proof.Status != models.ProofStatusApproved {
			continue
		}
		for _, pid := range proof.CoveredSet() {
			current, ok := coverage[pid]
			if !ok || proof.CreatedAt.After(current.CreatedAt) {
				coverage[pid] = proof
			}
		}
	}
	return coverage
}

// SubmitProof misafirin/katılımcının ödeme bildirimi göndermesini işler.
// Tek bildirim birden fazla katılımcıyı kapatabilir; kapsanan herkesin bu
// oturuma ait olması zorunludur.
func (s *PaymentService) SubmitProof(ctx context.Context, publicCode string, identity models.Identity, input ProofInput) (*models.PaymentProof, error) {
	session, err := s.sessions.GetSessionByPublicCode(ctx, publicCode)
	if err != nil {
		return nil, err
	}
	if !identity.Valid() {
		return nil, ErrIdentityInvalid
	}
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: tutar pozitif olmalı", ErrProofInvalidInput)
	}
	if input.ImageRef == "" {
		return nil, fmt.Errorf("%w: dekont görseli zorunludur", ErrProofInvalidInput)
	}

	// Gönderenin bu oturumda bir katılımcı satırı olmalı.
	submitter, err := s.resolveSubmitter(ctx, session, identity)
	if err != nil {
		return nil, err
	}

	coveredIDs := input.CoveredIDs
	if len(coveredIDs) == 0 {
		coveredIDs = []uint{submitter.ID}
	}
	if err := s.validateCovered(ctx, session.ID, coveredIDs); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = session.Currency
	}
	imageRef := input.ImageRef

	proof := &models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: submitter.ID,
		CoveredIDs:          coveredIDs,
		ImageRef:            &imageRef,
		Status:              models.ProofStatusPendingReview,
		AmountCents:         input.AmountCents,
		Currency:            currency,
	}
	if err := s.repo.Create(ctx, proof); err != nil {
		configslog.Log.Error("SubmitProof: kayıt başarısız", zap.Uint("sessionID", session.ID), zap.Error(err))
		return nil, err
	}
	configslog.SLog.Infof("Ödeme bildirimi alındı: oturum %d, bildirim %d, %d katılımcı", session.ID, proof.ID, len(coveredIDs))
	return proof, nil
}

// resolveSubmitter bildirimi gönderen kimliğin katılımcı satırını bulur.
func (s *PaymentService) resolveSubmitter(ctx context.Context, session *models.Session, identity models.Identity) (*models.Participant, error) {
	var (
		row *models.Participant
		err error
	)
	switch identity.Kind {
	case models.IdentityKindAuthenticated:
		row, err = s.participants.FindBySessionAndEmail(ctx, session.ID, identity.Email)
	case models.IdentityKindGuest:
		row, err = s.participants.FindBySessionAndProfileID(ctx, session.ID, identity.GuestKey)
		if err != nil && errors.Is(err, repositories.ErrNotFound) {
			row, err = s.participants.FindBySessionAndGuestKey(ctx, session.ID, identity.GuestKey)
		}
	default:
		return nil, ErrIdentityInvalid
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if identity.Kind == models.IdentityKindGuest && !row.IsGuest() {
		return nil, ErrParticipantNotFound
	}
	return row, nil
}

// validateCovered covered-set'teki her ID'nin oturuma ait olduğunu doğrular.
func (s *PaymentService) validateCovered(ctx context.Context, sessionID uint, coveredIDs []uint) error {
	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	inSession := make(map[uint]struct{}, len(participants))
	for i := range participants {
		inSession[participants[i].ID] = struct{}{}
	}
	for _, pid := range coveredIDs {
		if _, ok := inSession[pid]; !ok {
			return fmt.Errorf("%w (id: %d)", ErrCoveredNotInSession, pid)
		}
	}
	return nil
}

// ApproveProof bildirimi onaylar; onaylı bildirimler kapsam hesabına girer.
func (s *PaymentService) ApproveProof(ctx context.Context, hostSlug string, proofID uint, hostUserID uint) error {
	return s.processProof(ctx, hostSlug, proofID, hostUserID, models.ProofStatusApproved)
}

// RejectProof bildirimi reddeder.
func (s *PaymentService) RejectProof(ctx context.Context, hostSlug string, proofID uint, hostUserID uint) error {
	return s.processProof(ctx, hostSlug, proofID, hostUserID, models.ProofStatusRejected)
}

func (s *PaymentService) processProof(ctx context.Context, hostSlug string, proofID uint, hostUserID uint, status models.ProofStatus) error {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return err
	}
	proof, err := s.repo.FindByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProofNotFound
		}
		return err
	}
	if proof.SessionID != session.ID {
		return ErrProofNotFound
	}
	if proof.Status != models.ProofStatusPendingReview {
		return ErrProofAlreadyProcessed
	}

	now := s.now()
	proof.Status = status
	proof.ProcessedAt = &now
	if err := s.repo.Update(models.ContextWithUserID(ctx, hostUserID), proof); err != nil {
		configslog.Log.Error("processProof: güncelleme başarısız", zap.Uint("proofID", proofID), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Ödeme bildirimi işlendi: bildirim %d -> %s (host: %d)", proofID, status, hostUserID)
	return nil
}

// MarkCashPaid organizatörün elden aldığı ödemeyi kaydeder: nil görsel
// referanslı, tek kişilik covered-set'li, doğrudan approved bir bildirim.
// Katılımcının zaten onaylı bir kapsamı varsa mükerrer kayıt reddedilir.
func (s *PaymentService) MarkCashPaid(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) (*models.PaymentProof, error) {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return nil, err
	}
	participant, err := s.participants.FindByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if participant.SessionID != session.ID {
		return nil, ErrParticipantNotFound
	}

	approved, err := s.repo.ListApprovedBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if _, covered := latestApprovedCoverage(approved)[participantID]; covered {
		return nil, ErrAlreadyPaid
	}

	now := s.now()
	proof := &models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: participantID,
		CoveredIDs:          []uint{participantID},
		ImageRef:            nil, // nakit: dekont yok
		Status:              models.ProofStatusApproved,
		AmountCents:         session.PricePerHeadCents,
		Currency:            session.Currency,
		ProcessedAt:         &now,
	}
	if err := s.repo.Create(models.ContextWithUserID(ctx, hostUserID), proof); err != nil {
		configslog.Log.Error("MarkCashPaid: kayıt başarısız", zap.Uint("participantID", participantID), zap.Error(err))
		return nil, err
	}
	configslog.SLog.Infof("Nakit ödeme işaretlendi: oturum %d, katılımcı %d", session.ID, participantID)
	return proof, nil
}

// UnpaidParticipants onaylı hiçbir bildirimin kapsamadığı confirmed
// katılımcıları döndürür.
func (s *PaymentService) UnpaidParticipants(ctx context.Context, hostSlug string, hostUserID uint) ([]models.Participant, error) {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participants.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.ListApprovedBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	coverage := latestApprovedCoverage(approved)

	var unpaid []models.Participant
	for i := range participants {
		p := participants[i]
		if p.Status != models.ParticipantStatusConfirmed {
			continue
		}
		if _, ok := coverage[p.ID]; !ok {
			unpaid = append(unpaid, p)
		}
	}
	return unpaid, nil
}

// CoverageFor istenen katılımcılar için en güncel onaylı bildirimi döndürür.
// participantIDs boşsa oturumdaki tüm kapsam eşlemesi döner.
func (s *PaymentService) CoverageFor(ctx context.Context, hostSlug string, hostUserID uint, participantIDs []uint) (map[uint]*models.PaymentProof, error) {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.ListApprovedBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	coverage := latestApprovedCoverage(approved)
	if len(participantIDs) == 0 {
		return coverage, nil
	}

	filtered := make(map[uint]*models.PaymentProof, len(participantIDs))
	for _, pid := range participantIDs {
		if proof, ok := coverage[pid]; ok {
			filtered[pid] = proof
		}
	}
	return filtered, nil
}

var _ IPaymentService = (*PaymentService)(nil)
