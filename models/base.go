package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// BaseModel tüm tablolarda ortak olan kimlik ve denetim (audit) alanlarını taşır.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy *uint
	UpdatedBy *uint
	DeletedBy *uint
}

type contextKey string

const contextUserIDKey contextKey = "kortlink_user_id"

// ContextWithUserID audit hook'larının kullanması için işlemi yapan
// kullanıcının ID'sini context'e koyar.
func ContextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, contextUserIDKey, userID)
}

// UserIDFromContext context'teki kullanıcı ID'sini döndürür (yoksa 0, false).
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(contextUserIDKey).(uint)
	return id, ok
}

// BeforeCreate context'te kullanıcı varsa CreatedBy alanını doldurur.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if id, ok := UserIDFromContext(tx.Statement.Context); ok {
		m.CreatedBy = &id
	}
	return nil
}

// BeforeUpdate context'te kullanıcı varsa UpdatedBy alanını doldurur.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if id, ok := UserIDFromContext(tx.Statement.Context); ok {
		m.UpdatedBy = &id
	}
	return nil
}
