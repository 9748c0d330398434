package service

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuditService interface {
	GetAuditByID(ctx context.Context, id uuid.UUID, user *model.User) (*model.Audit, error)
	UpdateAuditAmountConfirmed(ctx context.Context, auditID uuid.UUID, amount float64) error
}

type auditService struct {
	auditRepo   repository.AuditRepository
	permissions PermissionService
	logger      *logrus.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, permissions PermissionService, logger *logrus.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, permissions: permissions, logger: logger}
}

func (s *auditService) GetAuditByID(ctx context.Context, id uuid.UUID, user *model.User) (*model.Audit, error) {
	if err := s.permissions.RequirePermission(ctx, user, model.ModuleAudit, model.ActionRead, ""); err != nil {
		return nil, err
	}
	audit, err := s.auditRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Audit not found")
	}
	return audit, nil
}

func (s *auditService) UpdateAuditAmountConfirmed(ctx context.Context, auditID uuid.UUID, amount float64) error {
	if amount < 0 {
		return apperror.BadRequest("amount_confirmed must not be negative")
	}
	if err := s.auditRepo.UpdateAmountConfirmed(ctx, auditID, amount); err != nil {
		return notFoundOr(err, "Audit not found")
	}
	s.logger.WithFields(logrus.Fields{"audit_id": auditID, "amount_confirmed": amount}).Info("Audit amount confirmed")
	return nil
}

// actionExecutor joins the services that own each approvable mutation.
type actionExecutor struct {
	properties PropertyService
	audits     AuditService
}

func NewActionExecutor(properties PropertyService, audits AuditService) ActionExecutor {
	return &actionExecutor{properties: properties, audits: audits}
}

func (e *actionExecutor) TransferProperty(ctx context.Context, propertyID, newPortfolioID uuid.UUID) error {
	return e.properties.TransferProperty(ctx, propertyID, newPortfolioID)
}

func (e *actionExecutor) DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return e.properties.DeactivateProperty(ctx, propertyID)
}

func (e *actionExecutor) ActivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	return e.properties.ActivateProperty(ctx, propertyID)
}

func (e *actionExecutor) UpdateAuditAmountConfirmed(ctx context.Context, auditID uuid.UUID, amount float64) error {
	return e.audits.UpdateAuditAmountConfirmed(ctx, auditID, amount)
}
