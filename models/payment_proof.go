package models

import "time"

// ProofStatus bir ödeme bildiriminin inceleme durumunu tanımlar.
type ProofStatus string

const (
	ProofStatusPendingReview ProofStatus = "pending_review"
	ProofStatusApproved      ProofStatus = "approved"
	ProofStatusRejected      ProofStatus = "rejected"
)

// PaymentProof tek bir ödeme bildirimini temsil eder.
//
// Bir bildirim birden fazla katılımcının ödemesini kapatabilir (CoveredIDs).
// Eski kayıtlar yalnızca ParticipantID taşır; mutabakat mantığı bunu tek
// elemanlı bir covered-set gibi değerlendirir ve CoveredIDs doluyken bile
// kümeye dahil eder.
//
// Organizatörün elden aldığı nakit ödemeler de sıradan bir approved bildirim
// olarak kaydedilir: ImageRef nil, covered-set tek kişiliktir.
type PaymentProof struct {
	BaseModel
	SessionID uint    `gorm:"not null;index"`
	Session   Session `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	// Bildirimi gönderen katılımcı.
	PaidByParticipantID uint `gorm:"not null;index"`

	// Legacy tekil kapsam alanı (eski satırlarda covered-set yoktur).
	ParticipantID *uint `gorm:"index"`

	// Bu bildirimin kapattığı katılımcı ID'leri (jsonb).
	CoveredIDs []uint `gorm:"serializer:json;type:jsonb"`

	// Dekont görseli referansı; nakit kayıtlarında nil.
	ImageRef *string `gorm:"type:varchar(500)"`

	Status      ProofStatus `gorm:"type:varchar(20);not null;default:'pending_review';index"`
	AmountCents int64       `gorm:"type:bigint;not null"`
	Currency    string      `gorm:"type:varchar(3);not null;default:'TRY'"`

	ProcessedAt *time.Time `gorm:"type:timestamptz"`
}

// CoveredSet bildirimin kapattığı katılımcı ID'lerini döndürür:
// CoveredIDs ile legacy ParticipantID'nin birleşimi (tekrarsız).
func (p *PaymentProof) CoveredSet() []uint {
	seen := make(map[uint]struct{}, len(p.CoveredIDs)+1)
	var out []uint
	for _, id := range p.CoveredIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if p.ParticipantID != nil {
		if _, ok := seen[*p.ParticipantID]; !ok {
			out = append(out, *p.ParticipantID)
		}
	}
	return out
}
