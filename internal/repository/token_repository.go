package repository

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Create(token *models.AuthToken) error {
	return r.db.Create(token).Error
}

func (r *GormTokenRepository) FindValid(tokenHash string, now time.Time) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.db.
		Where("token_hash = ? AND is_active = ? AND expires_at > ?", tokenHash, true, now).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormTokenRepository) Deactivate(tokenHash string) error {
	return r.db.Model(&models.AuthToken{}).
		Where("token_hash = ?", tokenHash).
		Update("is_active", false).Error
}
