package service

import (
	"context"
	"testing"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationFor(t *testing.T) {
	propertyID, portfolioID, auditID := uuid.New(), uuid.New(), uuid.New()
	amount := 12.5

	transfer := &model.PendingAction{ActionType: model.ActionTypePropertyTransfer, PropertyID: &propertyID}
	transfer.SetTransfer(model.TransferData{NewPortfolioID: &portfolioID})

	audit := &model.PendingAction{ActionType: model.ActionTypeAuditUpdateAmountConfirmed, AuditID: &auditID}
	audit.SetAuditUpdate(model.AuditUpdateData{AmountConfirmed: &amount})

	tests := []struct {
		name   string
		action *model.PendingAction
		want   Operation
	}{
		{"transfer", transfer, TransferPropertyOp{PropertyID: propertyID, NewPortfolioID: portfolioID}},
		{"deactivate", &model.PendingAction{ActionType: model.ActionTypePropertyDeactivate, PropertyID: &propertyID}, DeactivatePropertyOp{PropertyID: propertyID}},
		{"activate", &model.PendingAction{ActionType: model.ActionTypePropertyActivate, PropertyID: &propertyID}, ActivatePropertyOp{PropertyID: propertyID}},
		{"audit", audit, UpdateAuditAmountOp{AuditID: auditID, AmountConfirmed: amount}},
		{"portfolio deactivate", &model.PendingAction{ActionType: model.ActionTypePortfolioDeactivate, PortfolioID: &portfolioID}, DeactivatePortfolioOp{PortfolioID: portfolioID}},
		{"legacy delete", &model.PendingAction{ActionType: model.ActionTypePropertyDelete, PropertyID: &propertyID}, DeletePropertyOp{PropertyID: propertyID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := OperationFor(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestOperationForMissingFields(t *testing.T) {
	propertyID := uuid.New()
	actions := []*model.PendingAction{
		{ActionType: model.ActionTypePropertyTransfer, PropertyID: &propertyID},
		{ActionType: model.ActionTypePropertyTransfer},
		{ActionType: model.ActionTypePropertyDeactivate},
		{ActionType: model.ActionTypeAuditUpdateAmountConfirmed, AuditID: &propertyID},
		{ActionType: model.ActionTypePortfolioDeactivate},
		{ActionType: "SOMETHING_ELSE"},
	}
	for _, action := range actions {
		_, err := OperationFor(action)
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err), action.ActionType)
	}
}

func TestOperationExecuteDispatch(t *testing.T) {
	exec := &recordingExecutor{}
	ctx := context.Background()

	require.NoError(t, TransferPropertyOp{}.Execute(ctx, exec))
	require.NoError(t, DeactivatePropertyOp{}.Execute(ctx, exec))
	require.NoError(t, ActivatePropertyOp{}.Execute(ctx, exec))
	require.NoError(t, UpdateAuditAmountOp{}.Execute(ctx, exec))
	assert.Equal(t, []string{"transfer", "deactivate", "activate", "audit_amount"}, exec.calls)

	assert.ErrorIs(t, DeactivatePortfolioOp{}.Execute(ctx, exec), ErrActionNotImplemented)
	assert.ErrorIs(t, DeletePropertyOp{}.Execute(ctx, exec), ErrRetiredAction)
	assert.Len(t, exec.calls, 4)
}
