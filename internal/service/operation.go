package service

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/google/uuid"
)

// ActionExecutor performs the mutation behind an approved pending action.
// Each call is made once per approval, inside the approval transaction.
type ActionExecutor interface {
	TransferProperty(ctx context.Context, propertyID, newPortfolioID uuid.UUID) error
	DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error
	ActivateProperty(ctx context.Context, propertyID uuid.UUID) error
	UpdateAuditAmountConfirmed(ctx context.Context, auditID uuid.UUID, amount float64) error
}

// Operation is the closed set of things a pending action can do once approved.
// Every action type maps to exactly one implementation; the unexported marker
// keeps the set inside this package.
type Operation interface {
	Execute(ctx context.Context, exec ActionExecutor) error
	operation()
}

type TransferPropertyOp struct {
	PropertyID     uuid.UUID
	NewPortfolioID uuid.UUID
}

type DeactivatePropertyOp struct {
	PropertyID uuid.UUID
}

type ActivatePropertyOp struct {
	PropertyID uuid.UUID
}

type UpdateAuditAmountOp struct {
	AuditID         uuid.UUID
	AmountConfirmed float64
}

// DeactivatePortfolioOp is requestable but has no executor yet.
type DeactivatePortfolioOp struct {
	PortfolioID uuid.UUID
}

// DeletePropertyOp is the retired delete action, kept so old rows still decode.
type DeletePropertyOp struct {
	PropertyID uuid.UUID
}

func (TransferPropertyOp) operation()    {}
func (DeactivatePropertyOp) operation()  {}
func (ActivatePropertyOp) operation()    {}
func (UpdateAuditAmountOp) operation()   {}
func (DeactivatePortfolioOp) operation() {}
func (DeletePropertyOp) operation()      {}

func (op TransferPropertyOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return exec.TransferProperty(ctx, op.PropertyID, op.NewPortfolioID)
}

func (op DeactivatePropertyOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return exec.DeactivateProperty(ctx, op.PropertyID)
}

func (op ActivatePropertyOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return exec.ActivateProperty(ctx, op.PropertyID)
}

func (op UpdateAuditAmountOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return exec.UpdateAuditAmountConfirmed(ctx, op.AuditID, op.AmountConfirmed)
}

func (op DeactivatePortfolioOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return apperror.Wrap(apperror.KindUnrecoverable, ErrActionNotImplemented, "Portfolio deactivation is not implemented yet")
}

func (op DeletePropertyOp) Execute(ctx context.Context, exec ActionExecutor) error {
	return apperror.Wrap(apperror.KindUnrecoverable, ErrRetiredAction, "Property delete actions are retired; delete the property directly as a super admin")
}

// OperationFor decodes the stored action into its operation, validating the
// fields the operation needs.
func OperationFor(action *model.PendingAction) (Operation, error) {
	switch action.ActionType {
	case model.ActionTypePropertyTransfer:
		if action.PropertyID == nil {
			return nil, apperror.BadRequest("property_id is required for %s", action.ActionType)
		}
		transfer := action.Transfer()
		if transfer == nil || transfer.NewPortfolioID == nil {
			return nil, apperror.BadRequest("transfer_data.new_portfolio_id is required for %s", action.ActionType)
		}
		return TransferPropertyOp{PropertyID: *action.PropertyID, NewPortfolioID: *transfer.NewPortfolioID}, nil

	case model.ActionTypePropertyDeactivate, model.ActionTypePropertyActivate:
		if action.PropertyID == nil {
			return nil, apperror.BadRequest("property_id is required for %s", action.ActionType)
		}
		if action.ActionType == model.ActionTypePropertyDeactivate {
			return DeactivatePropertyOp{PropertyID: *action.PropertyID}, nil
		}
		return ActivatePropertyOp{PropertyID: *action.PropertyID}, nil

	case model.ActionTypeAuditUpdateAmountConfirmed:
		if action.AuditID == nil {
			return nil, apperror.BadRequest("audit_id is required for %s", action.ActionType)
		}
		update := action.AuditUpdate()
		if update == nil || update.AmountConfirmed == nil {
			return nil, apperror.BadRequest("audit_update_data.amount_confirmed is required for %s", action.ActionType)
		}
		return UpdateAuditAmountOp{AuditID: *action.AuditID, AmountConfirmed: *update.AmountConfirmed}, nil

	case model.ActionTypePortfolioDeactivate:
		if action.PortfolioID == nil {
			return nil, apperror.BadRequest("portfolio_id is required for %s", action.ActionType)
		}
		return DeactivatePortfolioOp{PortfolioID: *action.PortfolioID}, nil

	case model.ActionTypePropertyDelete:
		var propertyID uuid.UUID
		if action.PropertyID != nil {
			propertyID = *action.PropertyID
		}
		return DeletePropertyOp{PropertyID: propertyID}, nil
	}
	return nil, apperror.BadRequest("Unknown action type: %s", action.ActionType)
}

// resourceOf returns the module and the id the requester must be able to update.
func resourceOf(action *model.PendingAction) (model.ModuleType, *uuid.UUID, error) {
	switch action.ActionType {
	case model.ActionTypePropertyTransfer, model.ActionTypePropertyDeactivate, model.ActionTypePropertyActivate, model.ActionTypePropertyDelete:
		return model.ModuleProperty, action.PropertyID, nil
	case model.ActionTypePortfolioDeactivate:
		return model.ModulePortfolio, action.PortfolioID, nil
	case model.ActionTypeAuditUpdateAmountConfirmed:
		return model.ModuleAudit, action.AuditID, nil
	}
	return "", nil, apperror.BadRequest("Unknown action type: %s", action.ActionType)
}

func resourceTypeOf(module model.ModuleType) model.PendingActionResourceType {
	switch module {
	case model.ModulePortfolio:
		return model.ResourceTypePortfolio
	case model.ModuleAudit:
		return model.ResourceTypeAudit
	}
	return model.ResourceTypeProperty
}
