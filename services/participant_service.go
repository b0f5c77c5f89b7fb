package services

import (
	"context"
	"errors"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParticipantServiceError katılımcı servisi hataları.
type ParticipantServiceError string

func (e ParticipantServiceError) Error() string { return string(e) }

const (
	// ErrCapacityExceeded kapasite dolu ve bekleme listesi kapalı demektir.
	// Handler katmanı bunu CAPACITY_EXCEEDED makine koduyla dışarı verir.
	ErrCapacityExceeded ParticipantServiceError = "oturum kapasitesi dolu"
	// ErrDuplicateUnresolved çakışma sonrası yeniden sorgu da satırı
	// bulamadı demektir; tekrar denenmez, iç hata olarak yüzeye çıkar.
	ErrDuplicateUnresolved  ParticipantServiceError = "çakışan katılım kaydı çözülemedi"
	ErrIdentityInvalid      ParticipantServiceError = "geçersiz kimlik bilgisi"
	ErrParticipantNotFound  ParticipantServiceError = "katılımcı bulunamadı"
	ErrParticipantForbidden ParticipantServiceError = "bu işlem için yetkiniz yok"
	ErrJoinFailed           ParticipantServiceError = "katılım kaydedilemedi"
)

// JoinResult bir join denemesinin sonucunu taşır.
//
// AlreadyJoined, isteğin zaten aktif bir kaydı olan kimlikten geldiğini
// söyler (tekrar tıklama, retry veya yarışı kaybeden eşzamanlı istek).
// Waitlisted her zaman satırın veritabanındaki *gerçek* durumunu yansıtır;
// yarış durumunda son yazanın kararı geçerlidir, bu çağıran onu gözlemler.
type JoinResult struct {
	Participant   *models.Participant
	AlreadyJoined bool
	Waitlisted    bool
}

// IParticipantService katılım akışları için arayüz.
type IParticipantService interface {
	Join(ctx context.Context, publicCode string, identity models.Identity, phone *string) (*JoinResult, error)
	Decline(ctx context.Context, publicCode string, identity models.Identity) (*models.Participant, error)
	PullOut(ctx context.Context, publicCode string, identity models.Identity, reason string) error
	RemoveParticipant(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) error
	MarkPullOutSeen(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) error
	ListParticipants(ctx context.Context, hostSlug string, hostUserID uint) ([]models.Participant, error)
}

// ParticipantService IParticipantService arayüzünü uygular.
type ParticipantService struct {
	sessions ISessionService
	repo     repositories.IParticipantRepository
}

// NewParticipantService yeni bir ParticipantService örneği oluşturur.
func NewParticipantService() IParticipantService {
	return &ParticipantService{
		sessions: NewSessionService(),
		repo:     repositories.NewParticipantRepository(),
	}
}

// decideStatus kapasite/bekleme listesi kararını verir. Sayılmış duruma
// göre saf bir fonksiyondur; her join denemesinde taze sayımla çağrılır.
func decideStatus(session *models.Session, confirmedCount int64) (models.ParticipantStatus, error) {
	isFull := session.Capacity != nil && confirmedCount >= int64(*session.Capacity)
	if !isFull {
		return models.ParticipantStatusConfirmed, nil
	}
	if session.WaitlistEnabled {
		return models.ParticipantStatusWaitlisted, nil
	}
	return "", ErrCapacityExceeded
}

// resolveExisting istek sahibinin bu oturumda mevcut bir katılımcı satırına
// karşılık gelip gelmediğini bulur. Yokluk hata değildir.
//
// Kimlik kapsamı invariantı: e-posta ile yapılan arama asla misafir satırı
// döndürmez, misafir araması asla e-postalı satır döndürmez. İsim değiştiren
// misafir yeni kimlik sayılır: taze bir profil ID basılır ve "mevcut kayıt
// yok" raporlanır; eski satırın üzerine yazılmaz.
//
// Dönen profileID, insert yolunda kullanılacak kanonik misafir kimliğidir
// (authenticated kimliklerde boştur).
func (s *ParticipantService) resolveExisting(ctx context.Context, session *models.Session, identity models.Identity) (*models.Participant, string, error) {
	switch identity.Kind {
	case models.IdentityKindAuthenticated:
		existing, err := s.repo.FindBySessionAndEmail(ctx, session.ID, identity.Email)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, "", nil
			}
			return nil, "", err
		}
		return existing, "", nil

	case models.IdentityKindGuest:
		existing, err := s.repo.FindBySessionAndProfileID(ctx, session.ID, identity.GuestKey)
		if err == nil {
			return s.checkGuestRow(ctx, session, identity, existing)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, "", err
		}

		// Legacy fallback: profil ID'si henüz yazılmamış migration öncesi
		// satırlar ham guest key üzerinden bulunur. Sahiplik türü uyuşmayan
		// satır asla döndürülmez.
		legacy, err := s.repo.FindBySessionAndGuestKey(ctx, session.ID, identity.GuestKey)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, identity.GuestKey, nil
			}
			return nil, "", err
		}
		return s.checkGuestRow(ctx, session, identity, legacy)
	}
	return nil, "", ErrIdentityInvalid
}

// checkGuestRow bulunan satırı misafir kimlik kurallarından geçirir.
func (s *ParticipantService) checkGuestRow(ctx context.Context, session *models.Session, identity models.Identity, row *models.Participant) (*models.Participant, string, error) {
	if !row.IsGuest() {
		// Misafir kimliği, giriş yapılmış bir kullanıcının satırını sahiplenemez.
		configslog.Log.Warn("Kimlik kapsamı ihlali: guest key e-postalı satıra denk geldi",
			zap.Uint("sessionID", session.ID), zap.Uint("participantID", row.ID))
		return nil, identity.GuestKey, nil
	}
	if row.DisplayName != identity.DisplayName {
		// İsim değişti: bu artık başka bir misafir. Aynı isimle daha önce
		// açılmış bir satır varsa join idempotent kalsın diye o kullanılır;
		// yoksa yeni profil ID basılır. Mevcut satıra dokunulmaz.
		renamed, err := s.repo.FindBySessionGuestKeyAndName(ctx, session.ID, identity.GuestKey, identity.DisplayName)
		if err == nil && renamed.IsGuest() {
			pid := identity.GuestKey
			if renamed.ProfileID != nil {
				pid = *renamed.ProfileID
			}
			return renamed, pid, nil
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, "", err
		}
		return nil, uuid.NewString(), nil
	}
	return row, identity.GuestKey, nil
}

// reResolve insert çakışmasından sonra anahtarın artık işaret ettiği satırı
// bulur. Bulamazsa durum kalıcı bir tutarsızlıktır; sonsuz döngüye girmemek
// için ErrDuplicateUnresolved ile kesilir.
func (s *ParticipantService) reResolve(ctx context.Context, session *models.Session, identity models.Identity, profileID string) (*models.Participant, error) {
	var (
		row *models.Participant
		err error
	)
	switch identity.Kind {
	case models.IdentityKindAuthenticated:
		row, err = s.repo.FindBySessionAndEmail(ctx, session.ID, identity.Email)
	case models.IdentityKindGuest:
		row, err = s.repo.FindBySessionAndProfileID(ctx, session.ID, profileID)
		if err != nil && errors.Is(err, repositories.ErrNotFound) {
			row, err = s.repo.FindBySessionAndGuestKey(ctx, session.ID, identity.GuestKey)
		}
	default:
		return nil, ErrIdentityInvalid
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Error("Çakışma sonrası yeniden sorgu boş döndü",
				zap.Uint("sessionID", session.ID), zap.String("kind", string(identity.Kind)))
			return nil, ErrDuplicateUnresolved
		}
		return nil, err
	}
	return row, nil
}

// Join bir katılım isteğini işler: oturum ön koşulları, kimlik çözümü,
// kapasite kararı ve idempotent upsert.
//
// Sayım ile yazma arasında tek bir transaction yoktur; aynı kimlikle yarışan
// insert'ler unique indexlere çarpar ve reResolve ile mevcut satıra
// toparlanır. Farklı kimliklerin kapasite yarışı bilinen dar bir penceredir,
// promotion ve taze sayım sonraki işlemlerde düzeltir.
func (s *ParticipantService) Join(ctx context.Context, publicCode string, identity models.Identity, phone *string) (*JoinResult, error) {
	session, err := s.sessions.LoadJoinableSession(ctx, publicCode)
	if err != nil {
		return nil, err
	}
	if !identity.Valid() {
		return nil, ErrIdentityInvalid
	}

	existing, profileID, err := s.resolveExisting(ctx, session, identity)
	if err != nil {
		return nil, err
	}

	confirmedCount, err := s.repo.CountConfirmed(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	target, decErr := decideStatus(session, confirmedCount)
	if decErr != nil {
		if existing != nil {
			// Idempotent tekrar: kayıt zaten var, mevcut durumu korunur.
			return &JoinResult{
				Participant:   existing,
				AlreadyJoined: true,
				Waitlisted:    existing.Status == models.ParticipantStatusWaitlisted,
			}, nil
		}
		return nil, decErr
	}

	if existing != nil {
		return s.rejoinExisting(ctx, identity, existing, target, phone, profileID)
	}

	participant := &models.Participant{
		SessionID:    session.ID,
		DisplayName:  identity.DisplayName,
		ContactPhone: phone,
		Status:       target,
	}
	if identity.Kind == models.IdentityKindAuthenticated {
		email := identity.Email
		participant.ContactEmail = &email
		if participant.DisplayName == "" {
			participant.DisplayName = email
		}
	} else {
		guestKey := identity.GuestKey
		pid := profileID
		participant.GuestKey = &guestKey
		participant.ProfileID = &pid
	}

	err = s.repo.Insert(ctx, participant)
	if err == nil {
		configslog.SLog.Infof("Katılım kaydedildi: oturum %d, katılımcı %d, durum %s", session.ID, participant.ID, target)
		return &JoinResult{
			Participant: participant,
			Waitlisted:  target == models.ParticipantStatusWaitlisted,
		}, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		configslog.Log.Error("Join: insert başarısız", zap.Uint("sessionID", session.ID), zap.Error(err))
		return nil, ErrJoinFailed
	}

	// Aynı anahtar için yarışan bir yazma kazandı. Satırı yeniden çöz ve
	// onun kalıcı durumunu döndür; bu çağrının hedeflediği durum değil.
	recovered, recErr := s.reResolve(ctx, session, identity, profileID)
	if recErr != nil {
		return nil, recErr
	}
	configslog.SLog.Infof("Join çakışması toparlandı: oturum %d, katılımcı %d", session.ID, recovered.ID)
	return &JoinResult{
		Participant:   recovered,
		AlreadyJoined: true,
		Waitlisted:    recovered.Status == models.ParticipantStatusWaitlisted,
	}, nil
}

// rejoinExisting mevcut satır üzerinde tekrar join'i işler.
func (s *ParticipantService) rejoinExisting(ctx context.Context, identity models.Identity, existing *models.Participant, target models.ParticipantStatus, phone *string, profileID string) (*JoinResult, error) {
	wasActive := existing.Status == models.ParticipantStatusConfirmed ||
		existing.Status == models.ParticipantStatusWaitlisted

	// Confirmed bir katılımcı tekrar join ile asla düşürülmez: kendi satırı
	// sayıma dahil olduğu için taze karar onu waitlisted gösterebilir.
	if existing.Status == models.ParticipantStatusConfirmed {
		target = models.ParticipantStatusConfirmed
	}

	existing.Status = target
	if identity.DisplayName != "" {
		existing.DisplayName = identity.DisplayName
	}
	if phone != nil {
		existing.ContactPhone = phone
	}
	if identity.Kind == models.IdentityKindGuest && existing.ProfileID == nil && profileID != "" {
		// Legacy satıra kanonik profil ID'sini geri yaz.
		pid := profileID
		existing.ProfileID = &pid
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		configslog.Log.Error("Join: mevcut kayıt güncellenemedi", zap.Uint("participantID", existing.ID), zap.Error(err))
		return nil, ErrJoinFailed
	}
	return &JoinResult{
		Participant:   existing,
		AlreadyJoined: wasActive,
		Waitlisted:    target == models.ParticipantStatusWaitlisted,
	}, nil
}

// Decline katılmama bildirimini işler. İlk temasta da satır oluşur
// (cancelled); confirmed bir katılımcının vazgeçmesi yer açtığı için
// promotion tetiklenir.
func (s *ParticipantService) Decline(ctx context.Context, publicCode string, identity models.Identity) (*models.Participant, error) {
	session, err := s.sessions.LoadJoinableSession(ctx, publicCode)
	if err != nil {
		return nil, err
	}
	if !identity.Valid() {
		return nil, ErrIdentityInvalid
	}

	existing, profileID, err := s.resolveExisting(ctx, session, identity)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		prior := existing.Status
		existing.Status = models.ParticipantStatusCancelled
		if identity.DisplayName != "" {
			existing.DisplayName = identity.DisplayName
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			configslog.Log.Error("Decline: kayıt güncellenemedi", zap.Uint("participantID", existing.ID), zap.Error(err))
			return nil, err
		}
		if prior == models.ParticipantStatusConfirmed {
			s.promoteIfSlotFreed(ctx, session)
		}
		return existing, nil
	}

	participant := &models.Participant{
		SessionID:   session.ID,
		DisplayName: identity.DisplayName,
		Status:      models.ParticipantStatusCancelled,
	}
	if identity.Kind == models.IdentityKindAuthenticated {
		email := identity.Email
		participant.ContactEmail = &email
		if participant.DisplayName == "" {
			participant.DisplayName = email
		}
	} else {
		guestKey := identity.GuestKey
		pid := profileID
		participant.GuestKey = &guestKey
		participant.ProfileID = &pid
	}

	err = s.repo.Insert(ctx, participant)
	if err == nil {
		return participant, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		configslog.Log.Error("Decline: insert başarısız", zap.Uint("sessionID", session.ID), zap.Error(err))
		return nil, err
	}

	recovered, recErr := s.reResolve(ctx, session, identity, profileID)
	if recErr != nil {
		return nil, recErr
	}
	prior := recovered.Status
	recovered.Status = models.ParticipantStatusCancelled
	if err := s.repo.Update(ctx, recovered); err != nil {
		return nil, err
	}
	if prior == models.ParticipantStatusConfirmed {
		s.promoteIfSlotFreed(ctx, session)
	}
	return recovered, nil
}

// PullOut katılımcının kendi isteğiyle çekilmesini işler. Satır silinmez;
// sebep ve organizatör onayı için audit izi kalır.
//
// Join ön koşulları burada uygulanmaz: oturum kapatılmış ya da başlamış
// olsa da çekilme bildirilebilir, audit izi tam da geç çekilmeler içindir.
func (s *ParticipantService) PullOut(ctx context.Context, publicCode string, identity models.Identity, reason string) error {
	session, err := s.sessions.GetSessionByPublicCode(ctx, publicCode)
	if err != nil {
		return err
	}
	if !identity.Valid() {
		return ErrIdentityInvalid
	}

	existing, _, err := s.resolveExisting(ctx, session, identity)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrParticipantNotFound
	}

	prior := existing.Status
	existing.Status = models.ParticipantStatusPulledOut
	existing.PullOutReason = reason
	existing.PullOutSeen = false
	if err := s.repo.Update(ctx, existing); err != nil {
		configslog.Log.Error("PullOut: kayıt güncellenemedi", zap.Uint("participantID", existing.ID), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Katılımcı çekildi: oturum %d, katılımcı %d", session.ID, existing.ID)

	if prior == models.ParticipantStatusConfirmed {
		s.promoteIfSlotFreed(ctx, session)
	}
	return nil
}

// RemoveParticipant organizatörün katılımcıyı çıkarmasıdır (kalıcı silme).
func (s *ParticipantService) RemoveParticipant(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) error {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return err
	}

	participant, err := s.repo.FindByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	if participant.SessionID != session.ID {
		return ErrParticipantNotFound
	}

	prior := participant.Status
	txCtx := models.ContextWithUserID(ctx, hostUserID)
	if err := s.repo.HardDelete(txCtx, participant.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParticipantNotFound
		}
		configslog.Log.Error("RemoveParticipant: silme başarısız", zap.Uint("participantID", participantID), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Katılımcı çıkarıldı: oturum %d, katılımcı %d (host: %d)", session.ID, participantID, hostUserID)

	if prior == models.ParticipantStatusConfirmed {
		s.promoteIfSlotFreed(ctx, session)
	}
	return nil
}

// promoteIfSlotFreed confirmed bir yer boşaldığında bekleme listesindeki en
// eski katılımcıyı (FIFO, created_at asc) confirmed'e yükseltir. Çıkarma
// başına en fazla bir promotion yapılır; toplu çıkarma her katılımcı için
// ayrı ayrı çağırır.
//
// Buradaki hatalar asıl işlemi (silme/çekilme) geri almaz; loglanıp geçilir.
func (s *ParticipantService) promoteIfSlotFreed(ctx context.Context, session *models.Session) {
	if session.Capacity == nil {
		// Sınırsız kapasitede bekleme listesi oluşmaz.
		return
	}
	confirmedCount, err := s.repo.CountConfirmed(ctx, session.ID)
	if err != nil {
		configslog.Log.Error("Promotion: confirmed sayımı başarısız", zap.Uint("sessionID", session.ID), zap.Error(err))
		return
	}
	if confirmedCount >= int64(*session.Capacity) {
		return
	}

	oldest, err := s.repo.OldestWaitlisted(ctx, session.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Error("Promotion: bekleme listesi okunamadı", zap.Uint("sessionID", session.ID), zap.Error(err))
		}
		return
	}

	if err := s.repo.UpdateStatus(ctx, oldest.ID, models.ParticipantStatusConfirmed); err != nil {
		configslog.Log.Error("Promotion: durum güncellenemedi", zap.Uint("participantID", oldest.ID), zap.Error(err))
		return
	}
	configslog.SLog.Infof("Bekleme listesinden yükseltildi: oturum %d, katılımcı %d", session.ID, oldest.ID)
}

// MarkPullOutSeen organizatörün çekilme bildirimini gördüğünü işaretler.
func (s *ParticipantService) MarkPullOutSeen(ctx context.Context, hostSlug string, participantID uint, hostUserID uint) error {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return err
	}
	participant, err := s.repo.FindByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	if participant.SessionID != session.ID {
		return ErrParticipantNotFound
	}
	if participant.Status != models.ParticipantStatusPulledOut {
		return ErrParticipantNotFound
	}
	participant.PullOutSeen = true
	return s.repo.Update(models.ContextWithUserID(ctx, hostUserID), participant)
}

// ListParticipants oturumun katılımcılarını organizatöre listeler.
func (s *ParticipantService) ListParticipants(ctx context.Context, hostSlug string, hostUserID uint) ([]models.Participant, error) {
	session, err := s.sessions.GetSessionForHost(ctx, hostSlug, hostUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, session.ID)
}

var _ IParticipantService = (*ParticipantService)(nil)
