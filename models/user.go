package models

// User bir organizatör (host) hesabını temsil eder.
// Misafirler için kayıt tutulmaz; onlar guest key ile tanınır.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsSystem     bool   `gorm:"default:false"` // Sistem/admin hesabı mı?
}
