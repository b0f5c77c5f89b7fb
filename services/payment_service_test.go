package services

import (
	"context"
	"testing"
	"time"

	"kort.link/models"
	"kort.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePaymentProofRepo IPaymentProofRepository'nin bellek içi sürümüdür.
type fakePaymentProofRepo struct {
	nextID uint
	clock  time.Time
	rows   map[uint]*models.PaymentProof
}

func newFakePaymentProofRepo() *fakePaymentProofRepo {
	return &fakePaymentProofRepo{
		nextID: 1,
		clock:  testEpoch,
		rows:   make(map[uint]*models.PaymentProof),
	}
}

func (f *fakePaymentProofRepo) seed(p models.PaymentProof) *models.PaymentProof {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = f.clock
	f.clock = f.clock.Add(time.Minute)
	stored := p
	f.rows[p.ID] = &stored
	return &stored
}

func (f *fakePaymentProofRepo) Create(ctx context.Context, proof *models.PaymentProof) error {
	proof.ID = f.nextID
	f.nextID++
	proof.CreatedAt = f.clock
	f.clock = f.clock.Add(time.Minute)
	stored := *proof
	f.rows[proof.ID] = &stored
	return nil
}

func (f *fakePaymentProofRepo) FindByID(ctx context.Context, id uint) (*models.PaymentProof, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *row
	return &c, nil
}

func (f *fakePaymentProofRepo) ListBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error) {
	var out []models.PaymentProof
	for _, row := range f.rows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakePaymentProofRepo) ListApprovedBySession(ctx context.Context, sessionID uint) ([]models.PaymentProof, error) {
	var out []models.PaymentProof
	for _, row := range f.rows {
		if row.SessionID == sessionID && row.Status == models.ProofStatusApproved {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakePaymentProofRepo) Update(ctx context.Context, proof *models.PaymentProof) error {
	if _, ok := f.rows[proof.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *proof
	f.rows[proof.ID] = &stored
	return nil
}

var _ repositories.IPaymentProofRepository = (*fakePaymentProofRepo)(nil)

func newPaymentFixture(session *models.Session) (*PaymentService, *fakeParticipantRepo, *fakePaymentProofRepo) {
	participants := newFakeParticipantRepo()
	proofs := newFakePaymentProofRepo()
	svc := &PaymentService{
		sessions:     newFakeSessionService(session),
		participants: participants,
		repo:         proofs,
		now:          func() time.Time { return testEpoch.Add(time.Hour) },
	}
	return svc, participants, proofs
}

func seedConfirmed(repo *fakeParticipantRepo, sessionID uint, name, guestKey string) *models.Participant {
	return repo.seed(models.Participant{
		SessionID:   sessionID,
		DisplayName: name,
		GuestKey:    &guestKey,
		ProfileID:   &guestKey,
		Status:      models.ParticipantStatusConfirmed,
	})
}

func TestLatestApprovedCoverage(t *testing.T) {
	legacyID := uint(3)
	older := models.PaymentProof{
		CoveredIDs: []uint{1, 2},
		Status:     models.ProofStatusApproved,
	}
	older.ID = 10
	older.CreatedAt = testEpoch

	legacy := models.PaymentProof{
		ParticipantID: &legacyID,
		Status:        models.ProofStatusApproved,
	}
	legacy.ID = 11
	legacy.CreatedAt = testEpoch.Add(time.Minute)

	// 2 numaralı katılımcıyı daha yeni bir bildirim de kapsıyor.
	newer := models.PaymentProof{
		CoveredIDs: []uint{2},
		Status:     models.ProofStatusApproved,
	}
	newer.ID = 12
	newer.CreatedAt = testEpoch.Add(2 * time.Minute)

	rejected := models.PaymentProof{
		CoveredIDs: []uint{4},
		Status:     models.ProofStatusRejected,
	}
	rejected.ID = 13
	rejected.CreatedAt = testEpoch.Add(3 * time.Minute)

	coverage := latestApprovedCoverage([]models.PaymentProof{older, legacy, newer, rejected})

	require.Contains(t, coverage, uint(1))
	require.Contains(t, coverage, uint(2))
	require.Contains(t, coverage, uint(3), "legacy participant_id kapsaması da sayılır")
	assert.NotContains(t, coverage, uint(4), "reddedilen bildirim kapsam üretmez")

	assert.Equal(t, uint(10), coverage[1].ID)
	assert.Equal(t, uint(12), coverage[2].ID, "aynı katılımcı için created_at'i büyük olan kazanır")
	assert.Equal(t, uint(11), coverage[3].ID)
}

func TestSubmitProofDefaultsToSubmitter(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, _ := newPaymentFixture(session)
	ctx := context.Background()

	submitter := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")

	proof, err := svc.SubmitProof(ctx, session.PublicCode, models.GuestIdentity("cihaz-1", "Ali"), ProofInput{
		ImageRef:    "uploads/dekont-1.jpg",
		AmountCents: 15000,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProofStatusPendingReview, proof.Status)
	assert.Equal(t, []uint{submitter.ID}, proof.CoveredIDs)
	assert.Equal(t, submitter.ID, proof.PaidByParticipantID)
	require.NotNil(t, proof.ImageRef)
	assert.Equal(t, "uploads/dekont-1.jpg", *proof.ImageRef)
	assert.Equal(t, "TRY", proof.Currency, "para birimi verilmezse oturumunki kullanılır")
}

func TestSubmitProofCoversMultipleParticipants(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, _ := newPaymentFixture(session)
	ctx := context.Background()

	payer := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")
	friend := seedConfirmed(participants, session.ID, "Veli", "cihaz-2")

	proof, err := svc.SubmitProof(ctx, session.PublicCode, models.GuestIdentity("cihaz-1", "Ali"), ProofInput{
		CoveredIDs:  []uint{payer.ID, friend.ID},
		ImageRef:    "uploads/dekont-2.jpg",
		AmountCents: 30000,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{payer.ID, friend.ID}, proof.CoveredIDs)
}

func TestSubmitProofRejectsForeignCovered(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	payer := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")

	_, err := svc.SubmitProof(ctx, session.PublicCode, models.GuestIdentity("cihaz-1", "Ali"), ProofInput{
		CoveredIDs:  []uint{payer.ID, 999},
		ImageRef:    "uploads/dekont-3.jpg",
		AmountCents: 30000,
	})
	assert.ErrorIs(t, err, ErrCoveredNotInSession)
	assert.Empty(t, proofs.rows)
}

func TestSubmitProofValidation(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, _ := newPaymentFixture(session)
	ctx := context.Background()
	seedConfirmed(participants, session.ID, "Ali", "cihaz-1")
	identity := models.GuestIdentity("cihaz-1", "Ali")

	_, err := svc.SubmitProof(ctx, session.PublicCode, identity, ProofInput{AmountCents: 15000})
	assert.ErrorIs(t, err, ErrProofInvalidInput, "dekont görseli zorunlu")

	_, err = svc.SubmitProof(ctx, session.PublicCode, identity, ProofInput{ImageRef: "x.jpg", AmountCents: 0})
	assert.ErrorIs(t, err, ErrProofInvalidInput, "tutar pozitif olmalı")

	_, err = svc.SubmitProof(ctx, session.PublicCode, models.GuestIdentity("yabanci", "Kimse"), ProofInput{ImageRef: "x.jpg", AmountCents: 15000})
	assert.ErrorIs(t, err, ErrParticipantNotFound, "gönderenin katılımcı satırı olmalı")
}

func TestApproveProofOnlyOnce(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	payer := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")
	imageRef := "uploads/dekont.jpg"
	proof := proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: payer.ID,
		CoveredIDs:          []uint{payer.ID},
		ImageRef:            &imageRef,
		Status:              models.ProofStatusPendingReview,
		AmountCents:         15000,
		Currency:            "TRY",
	})

	err := svc.ApproveProof(ctx, session.HostSlug, proof.ID, testHostID)
	require.NoError(t, err)

	stored, _ := proofs.FindByID(ctx, proof.ID)
	assert.Equal(t, models.ProofStatusApproved, stored.Status)
	require.NotNil(t, stored.ProcessedAt)

	err = svc.ApproveProof(ctx, session.HostSlug, proof.ID, testHostID)
	assert.ErrorIs(t, err, ErrProofAlreadyProcessed)
	err = svc.RejectProof(ctx, session.HostSlug, proof.ID, testHostID)
	assert.ErrorIs(t, err, ErrProofAlreadyProcessed)
}

func TestProcessProofScopedToSession(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	other := newOpenSession("baskasi1234", nil, true)
	participants := newFakeParticipantRepo()
	proofs := newFakePaymentProofRepo()
	svc := &PaymentService{
		sessions:     newFakeSessionService(session, other),
		participants: participants,
		repo:         proofs,
		now:          func() time.Time { return testEpoch },
	}

	foreign := proofs.seed(models.PaymentProof{
		SessionID:           other.ID,
		PaidByParticipantID: 1,
		Status:              models.ProofStatusPendingReview,
		AmountCents:         15000,
		Currency:            "TRY",
	})

	err := svc.ApproveProof(context.Background(), session.HostSlug, foreign.ID, testHostID)
	assert.ErrorIs(t, err, ErrProofNotFound)
}

func TestMarkCashPaid(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	payer := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")

	proof, err := svc.MarkCashPaid(ctx, session.HostSlug, payer.ID, testHostID)
	require.NoError(t, err)

	assert.Equal(t, models.ProofStatusApproved, proof.Status)
	assert.Nil(t, proof.ImageRef, "nakit kaydında dekont görseli yoktur")
	assert.Equal(t, []uint{payer.ID}, proof.CoveredIDs)
	assert.Equal(t, session.PricePerHeadCents, proof.AmountCents)
	require.NotNil(t, proof.ProcessedAt)
	assert.Len(t, proofs.rows, 1)

	// Aynı katılımcı için ikinci nakit işareti mükerrerdir.
	_, err = svc.MarkCashPaid(ctx, session.HostSlug, payer.ID, testHostID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Len(t, proofs.rows, 1)
}

func TestMarkCashPaidRejectsLegacyCovered(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	payer := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")

	// Eski şemadan gelen, yalnızca participant_id taşıyan onaylı bildirim.
	legacyID := payer.ID
	proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: payer.ID,
		ParticipantID:       &legacyID,
		Status:              models.ProofStatusApproved,
		AmountCents:         15000,
		Currency:            "TRY",
	})

	_, err := svc.MarkCashPaid(ctx, session.HostSlug, payer.ID, testHostID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestUnpaidParticipants(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	p1 := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")
	p2 := seedConfirmed(participants, session.ID, "Veli", "cihaz-2")
	p3 := seedConfirmed(participants, session.ID, "Ayşe", "cihaz-3")
	p4 := seedConfirmed(participants, session.ID, "Fatma", "cihaz-4")
	waitKey := "cihaz-5"
	participants.seed(models.Participant{
		SessionID:   session.ID,
		DisplayName: "Bekleyen",
		GuestKey:    &waitKey,
		ProfileID:   &waitKey,
		Status:      models.ParticipantStatusWaitlisted,
	})

	imageRef := "uploads/toplu.jpg"
	proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: p1.ID,
		CoveredIDs:          []uint{p1.ID, p2.ID},
		ImageRef:            &imageRef,
		Status:              models.ProofStatusApproved,
		AmountCents:         30000,
		Currency:            "TRY",
	})
	legacyID := p3.ID
	proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: p3.ID,
		ParticipantID:       &legacyID,
		Status:              models.ProofStatusApproved,
		AmountCents:         15000,
		Currency:            "TRY",
	})

	unpaid, err := svc.UnpaidParticipants(ctx, session.HostSlug, testHostID)
	require.NoError(t, err)

	require.Len(t, unpaid, 1, "yalnızca kapsanmayan confirmed katılımcı kalmalı")
	assert.Equal(t, p4.ID, unpaid[0].ID)
}

func TestCoverageForLatestWins(t *testing.T) {
	session := newOpenSession("odeme123456", nil, true)
	svc, participants, proofs := newPaymentFixture(session)
	ctx := context.Background()

	p1 := seedConfirmed(participants, session.ID, "Ali", "cihaz-1")

	old := proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: p1.ID,
		CoveredIDs:          []uint{p1.ID},
		Status:              models.ProofStatusApproved,
		AmountCents:         15000,
		Currency:            "TRY",
	})
	newer := proofs.seed(models.PaymentProof{
		SessionID:           session.ID,
		PaidByParticipantID: p1.ID,
		CoveredIDs:          []uint{p1.ID},
		Status:              models.ProofStatusApproved,
		AmountCents:         15000,
		Currency:            "TRY",
	})
	require.True(t, newer.CreatedAt.After(old.CreatedAt))

	coverage, err := svc.CoverageFor(ctx, session.HostSlug, testHostID, []uint{p1.ID})
	require.NoError(t, err)
	require.Contains(t, coverage, p1.ID)
	assert.Equal(t, newer.ID, coverage[p1.ID].ID)
}
