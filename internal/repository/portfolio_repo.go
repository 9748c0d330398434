package repository

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *model.Portfolio) error
	FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Portfolio, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error)
	FindByName(ctx context.Context, name string) (*model.Portfolio, error)
}

type portfolioRepo struct {
	db *gorm.DB
}

func NewPortfolioRepo(db *gorm.DB) PortfolioRepository {
	return &portfolioRepo{db}
}

func (r *portfolioRepo) Create(ctx context.Context, portfolio *model.Portfolio) error {
	return database.Conn(ctx, r.db).Create(portfolio).Error
}

func (r *portfolioRepo) FindAll(ctx context.Context, scope model.AccessibleIDs) ([]model.Portfolio, error) {
	var portfolios []model.Portfolio
	query := database.Conn(ctx, r.db).Order("name ASC")
	if !scope.All {
		if len(scope.IDs) == 0 {
			return portfolios, nil
		}
		query = query.Where("id IN ?", scope.IDs)
	}
	err := query.Find(&portfolios).Error
	return portfolios, err
}

func (r *portfolioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	if err := database.Conn(ctx, r.db).First(&portfolio, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *portfolioRepo) FindByName(ctx context.Context, name string) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	if err := database.Conn(ctx, r.db).First(&portfolio, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}
