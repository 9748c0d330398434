package repository

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Audit, error)
	UpdateAmountConfirmed(ctx context.Context, id uuid.UUID, amount float64) error
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Audit, error) {
	var audit model.Audit
	if err := database.Conn(ctx, r.db).Preload("Property").First(&audit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *auditRepo) UpdateAmountConfirmed(ctx context.Context, id uuid.UUID, amount float64) error {
	result := database.Conn(ctx, r.db).Model(&model.Audit{}).
		Where("id = ?", id).
		Update("amount_confirmed", amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
