package models

// ParticipantStatus bir katılımcının oturumla ilişkisinin durumunu tanımlar.
type ParticipantStatus string

const (
	ParticipantStatusConfirmed  ParticipantStatus = "confirmed"  // Yeri kesinleşti
	ParticipantStatusWaitlisted ParticipantStatus = "waitlisted" // Bekleme listesinde
	ParticipantStatusCancelled  ParticipantStatus = "cancelled"  // Katılmayacağını bildirdi
	ParticipantStatusPulledOut  ParticipantStatus = "pulled_out" // Katıldıktan sonra çekildi
	// ParticipantStatusInvited eski kayıtlardan gelen legacy değerdir;
	// confirmed sayılmaz, hiçbir yeni akış bu değeri yazmaz.
	ParticipantStatusInvited ParticipantStatus = "invited"
)

// Participant bir kişinin tek bir oturumla ilişkisini temsil eder.
//
// Kimlik modeli:
//   - Giriş yapmış kullanıcılar ContactEmail ile eşlenir; GuestKey ve
//     ProfileID boştur.
//   - Misafirler cihazda üretilen GuestKey ile gelir; kanonik kimlik
//     ProfileID'dir (ilk katılımda guest key'e eşitlenir, isim değişiminde
//     yeni bir UUID basılır).
//
// Tekillik (session_id, profile_id) ve (session_id, contact_email)
// üzerinde partial unique indexlerle veritabanında zorlanır; yarışan
// eşzamanlı insert'ler bu indexlere çarpar ve repository katmanında
// ErrConflict olarak sınıflandırılır.
type Participant struct {
	BaseModel
	SessionID uint    `gorm:"not null;index"`
	Session   Session `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	DisplayName  string  `gorm:"type:varchar(150);not null"`
	ContactPhone *string `gorm:"type:varchar(30)"`
	ContactEmail *string `gorm:"type:varchar(150);index"`
	GuestKey     *string `gorm:"type:varchar(64);index"`
	ProfileID    *string `gorm:"type:varchar(64);index"`

	Status ParticipantStatus `gorm:"type:varchar(20);not null;default:'confirmed';index"`

	// Pull-out denetim izi: katılımcı çekildiğinde sebep saklanır,
	// organizatör görene kadar PullOutSeen false kalır.
	PullOutReason string `gorm:"type:text"`
	PullOutSeen   bool   `gorm:"type:boolean;default:false"`
}

// IsGuest satırın misafir kimliğine mi ait olduğunu söyler.
func (p *Participant) IsGuest() bool {
	return p.ContactEmail == nil
}
