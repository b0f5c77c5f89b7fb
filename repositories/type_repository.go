package repositories

import (
	"context"
	"errors"

	"kort.link/configs"
	"kort.link/models"

	"gorm.io/gorm"
)

// ITypeRepository spor dalı kataloğu için arayüz.
type ITypeRepository interface {
	FindByName(ctx context.Context, name string) (*models.Type, error)
	FindAll(ctx context.Context) ([]models.Type, error)
}

// TypeRepository ITypeRepository arayüzünü uygular.
type TypeRepository struct {
	db *gorm.DB
}

// NewTypeRepository yeni bir TypeRepository örneği oluşturur.
func NewTypeRepository() ITypeRepository {
	return &TypeRepository{db: configs.GetDB()}
}

func (r *TypeRepository) getDB(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db)
}

// FindByName spor dalını adıyla bulur (seed edilen katalogdan).
func (r *TypeRepository) FindByName(ctx context.Context, name string) (*models.Type, error) {
	if name == "" {
		return nil, ErrNotFound
	}
	var t models.Type
	err := r.getDB(ctx).Where("name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAll katalogdaki tüm spor dallarını getirir.
func (r *TypeRepository) FindAll(ctx context.Context) ([]models.Type, error) {
	var types []models.Type
	err := r.getDB(ctx).Order("name asc").Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

var _ ITypeRepository = (*TypeRepository)(nil)
