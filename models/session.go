package models

import "time"

// SessionStatus bir oturumun yaşam döngüsü durumunu tanımlar.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"     // Henüz yayınlanmadı
	SessionStatusOpen      SessionStatus = "open"      // Katılıma açık
	SessionStatusClosed    SessionStatus = "closed"    // Katılım kapatıldı
	SessionStatusCompleted SessionStatus = "completed" // Oynandı, bitti
	SessionStatusCancelled SessionStatus = "cancelled" // İptal edildi
)

// Session paylaşılan bir spor oturumu davetini temsil eder.
// PublicCode misafirlerin katılım sayfasına ulaştığı kısa anahtardır;
// HostSlug ise organizatörün panel linkinde kullanılır.
type Session struct {
	BaseModel
	HostUserID uint  `gorm:"index;not null"`
	Host       User  `gorm:"foreignKey:HostUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	TypeID     uint  `gorm:"not null;index"`
	Type       Type  `gorm:"foreignKey:TypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`

	PublicCode string `gorm:"type:varchar(11);uniqueIndex;not null"`
	HostSlug   string `gorm:"type:varchar(36);uniqueIndex;not null"`

	Title        string        `gorm:"type:varchar(255);not null"`
	Description  string        `gorm:"type:text"`
	LocationText string        `gorm:"type:varchar(255)"`
	LocationURL  string        `gorm:"type:varchar(500)"`
	StartsAt     time.Time     `gorm:"index;type:timestamptz;not null"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	// Capacity nil ise sınırsız katılım demektir.
	Capacity        *int `gorm:"type:integer"`
	WaitlistEnabled bool `gorm:"type:boolean;default:true"`

	// Ödeme beklentisi (opsiyonel, kişi başı).
	PricePerHeadCents int64  `gorm:"type:bigint;default:0"`
	Currency          string `gorm:"type:varchar(3);default:'TRY'"`

	Participants []Participant `gorm:"foreignKey:SessionID"`
}

// IsJoinable oturumun katılım/red işlemlerine açık olup olmadığını söyler.
func (s *Session) IsJoinable(now time.Time) bool {
	return s.Status == SessionStatusOpen && now.Before(s.StartsAt)
}
