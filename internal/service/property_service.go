package service

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/database"
	"hotel-portfolio-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreatePropertyRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Address     string    `json:"address"`
	PortfolioID uuid.UUID `json:"portfolio_id" validate:"uuid_required"`
}

type PropertyService interface {
	CreateProperty(ctx context.Context, req *CreatePropertyRequest, user *model.User) (*model.Property, error)
	GetAllProperties(ctx context.Context, user *model.User) ([]model.Property, error)
	GetPropertyByID(ctx context.Context, id uuid.UUID, user *model.User) (*model.Property, error)

	TransferProperty(ctx context.Context, propertyID, newPortfolioID uuid.UUID) error
	DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error
	ActivateProperty(ctx context.Context, propertyID uuid.UUID) error
}

type propertyService struct {
	propertyRepo  repository.PropertyRepository
	portfolioRepo repository.PortfolioRepository
	permissions   PermissionService
	tx            database.Transactor
	logger        *logrus.Logger
}

func NewPropertyService(propertyRepo repository.PropertyRepository, portfolioRepo repository.PortfolioRepository, permissions PermissionService, tx database.Transactor, logger *logrus.Logger) PropertyService {
	return &propertyService{
		propertyRepo:  propertyRepo,
		portfolioRepo: portfolioRepo,
		permissions:   permissions,
		tx:            tx,
		logger:        logger,
	}
}

func (s *propertyService) CreateProperty(ctx context.Context, req *CreatePropertyRequest, user *model.User) (*model.Property, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperror.BadRequest("%s", msg)
	}
	if err := s.permissions.RequirePermission(ctx, user, model.ModuleProperty, model.ActionCreate, ""); err != nil {
		return nil, err
	}
	// the target portfolio must be one the user can see
	if err := s.permissions.RequirePermission(ctx, user, model.ModulePortfolio, model.ActionRead, req.PortfolioID.String()); err != nil {
		return nil, err
	}
	if _, err := s.portfolioRepo.FindByID(ctx, req.PortfolioID); err != nil {
		return nil, notFoundOr(err, "Portfolio not found")
	}

	property := &model.Property{
		Name:        req.Name,
		Address:     req.Address,
		PortfolioID: req.PortfolioID,
		IsActive:    true,
	}
	property.CreatedBy = user.ID.String()
	property.UpdatedBy = user.ID.String()

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.propertyRepo.Create(ctx, property); err != nil {
			return err
		}
		if user.Role.AccessLevelFor(model.ModuleProperty) == model.AccessLevelPartial {
			return s.permissions.GrantResourceAccess(ctx, user.ID, model.ModuleProperty, property.ID.String())
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err, "Failed to create property")
	}

	s.logger.WithFields(logrus.Fields{
		"property_id":  property.ID,
		"portfolio_id": property.PortfolioID,
		"user_id":      user.ID,
	}).Info("Property created")
	return property, nil
}

func (s *propertyService) GetAllProperties(ctx context.Context, user *model.User) ([]model.Property, error) {
	if err := s.permissions.RequirePermission(ctx, user, model.ModuleProperty, model.ActionRead, ""); err != nil {
		return nil, err
	}
	scope, err := s.permissions.GetAccessibleResourceIDs(ctx, user, model.ModuleProperty)
	if err != nil {
		return nil, err
	}
	properties, err := s.propertyRepo.FindAll(ctx, scope)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch properties")
	}
	return properties, nil
}

func (s *propertyService) GetPropertyByID(ctx context.Context, id uuid.UUID, user *model.User) (*model.Property, error) {
	if err := s.permissions.RequirePermission(ctx, user, model.ModuleProperty, model.ActionRead, id.String()); err != nil {
		return nil, err
	}
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Property not found")
	}
	return property, nil
}

// TransferProperty moves the property and prunes access lists in one transaction.
func (s *propertyService) TransferProperty(ctx context.Context, propertyID, newPortfolioID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		property, err := s.propertyRepo.LockByID(ctx, propertyID)
		if err != nil {
			return notFoundOr(err, "Property not found")
		}
		if property.PortfolioID == newPortfolioID {
			return apperror.BadRequest("Property already belongs to the target portfolio")
		}
		if _, err := s.portfolioRepo.FindByID(ctx, newPortfolioID); err != nil {
			return notFoundOr(err, "Target portfolio not found")
		}

		if err := s.propertyRepo.UpdatePortfolio(ctx, propertyID, newPortfolioID); err != nil {
			return apperror.Internal(err, "Failed to transfer property")
		}
		if err := s.permissions.UpdateUserAccessAfterPropertyTransfer(ctx, propertyID.String(), newPortfolioID.String()); err != nil {
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"property_id":       propertyID,
			"from_portfolio_id": property.PortfolioID,
			"to_portfolio_id":   newPortfolioID,
		}).Info("Property transferred")
		return nil
	})
}

func (s *propertyService) DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return s.setActive(ctx, propertyID, false)
}

func (s *propertyService) ActivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return s.setActive(ctx, propertyID, true)
}

func (s *propertyService) setActive(ctx context.Context, propertyID uuid.UUID, active bool) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		property, err := s.propertyRepo.LockByID(ctx, propertyID)
		if err != nil {
			return notFoundOr(err, "Property not found")
		}
		if property.IsActive == active {
			if active {
				return apperror.BadRequest("Property is already active")
			}
			return apperror.BadRequest("Property is already inactive")
		}
		if err := s.propertyRepo.SetActive(ctx, propertyID, active); err != nil {
			return apperror.Internal(err, "Failed to update property status")
		}
		s.logger.WithFields(logrus.Fields{"property_id": propertyID, "is_active": active}).Info("Property status changed")
		return nil
	})
}
