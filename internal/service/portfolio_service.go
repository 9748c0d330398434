package service

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/database"
	"hotel-portfolio-api/pkg/validator"

	"github.com/sirupsen/logrus"
)

type CreatePortfolioRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type PortfolioService interface {
	CreatePortfolio(ctx context.Context, req *CreatePortfolioRequest, user *model.User) (*model.Portfolio, error)
	GetAllPortfolios(ctx context.Context, user *model.User) ([]model.Portfolio, error)
}

type portfolioService struct {
	portfolioRepo repository.PortfolioRepository
	permissions   PermissionService
	tx            database.Transactor
	logger        *logrus.Logger
}

func NewPortfolioService(portfolioRepo repository.PortfolioRepository, permissions PermissionService, tx database.Transactor, logger *logrus.Logger) PortfolioService {
	return &portfolioService{
		portfolioRepo: portfolioRepo,
		permissions:   permissions,
		tx:            tx,
		logger:        logger,
	}
}

func (s *portfolioService) CreatePortfolio(ctx context.Context, req *CreatePortfolioRequest, user *model.User) (*model.Portfolio, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperror.BadRequest("%s", msg)
	}
	if err := s.permissions.RequirePermission(ctx, user, model.ModulePortfolio, model.ActionCreate, ""); err != nil {
		return nil, err
	}

	existing, err := s.portfolioRepo.FindByName(ctx, req.Name)
	if err != nil && !isNotFound(err) {
		return nil, apperror.Internal(err, "Failed to check portfolio name")
	}
	if existing != nil {
		return nil, apperror.BadRequest("Portfolio name already exists")
	}

	portfolio := &model.Portfolio{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	portfolio.CreatedBy = user.ID.String()
	portfolio.UpdatedBy = user.ID.String()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
			return err
		}
		// a partial creator keeps access to what they create
		if user.Role.AccessLevelFor(model.ModulePortfolio) == model.AccessLevelPartial {
			return s.permissions.GrantResourceAccess(ctx, user.ID, model.ModulePortfolio, portfolio.ID.String())
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err, "Failed to create portfolio")
	}

	s.logger.WithFields(logrus.Fields{"portfolio_id": portfolio.ID, "user_id": user.ID}).Info("Portfolio created")
	return portfolio, nil
}

func (s *portfolioService) GetAllPortfolios(ctx context.Context, user *model.User) ([]model.Portfolio, error) {
	if err := s.permissions.RequirePermission(ctx, user, model.ModulePortfolio, model.ActionRead, ""); err != nil {
		return nil, err
	}
	scope, err := s.permissions.GetAccessibleResourceIDs(ctx, user, model.ModulePortfolio)
	if err != nil {
		return nil, err
	}
	portfolios, err := s.portfolioRepo.FindAll(ctx, scope)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch portfolios")
	}
	return portfolios, nil
}
