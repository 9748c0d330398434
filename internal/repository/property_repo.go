package repository

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Property, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
	UpdatePortfolio(ctx context.Context, id, portfolioID uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type propertyRepo struct {
	db *gorm.DB
}

func NewPropertyRepo(db *gorm.DB) PropertyRepository {
	return &propertyRepo{db}
}

func (r *propertyRepo) Create(ctx context.Context, property *model.Property) error {
	return database.Conn(ctx, r.db).Create(property).Error
}

// FindAll lists the properties inside scope.
func (r *propertyRepo) FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Property, error) {
	var properties []model.Property
	query := database.Conn(ctx, r.db).Preload("Portfolio").Order("name ASC")
	if !scope.All {
		if len(scope.IDs) == 0 {
			return properties, nil
		}
		query = query.Where("id IN ?", scope.IDs)
	}
	err := query.Find(&properties).Error
	return properties, err
}

func (r *propertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	var property model.Property
	if err := database.Conn(ctx, r.db).Preload("Portfolio").First(&property, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// LockByID loads the property with a row lock held until the surrounding transaction ends.
func (r *propertyRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	var property model.Property
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&property, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepo) UpdatePortfolio(ctx context.Context, id, portfolioID uuid.UUID) error {
	return database.Conn(ctx, r.db).Model(&model.Property{}).
		Where("id = ?", id).
		Update("portfolio_id", portfolioID).Error
}

func (r *propertyRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return database.Conn(ctx, r.db).Model(&model.Property{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
