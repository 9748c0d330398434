package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreatePendingActionRequest struct {
	ActionType      model.PendingActionType `json:"action_type" validate:"required"`
	PropertyID      *uuid.UUID              `json:"property_id"`
	PortfolioID     *uuid.UUID              `json:"portfolio_id"`
	AuditID         *uuid.UUID              `json:"audit_id"`
	TransferData    *model.TransferData     `json:"transfer_data"`
	AuditUpdateData *model.AuditUpdateData  `json:"audit_update_data"`
	Reason          string                  `json:"reason" validate:"max=2000"`
}

// TransferView is the from/to pair shown for PROPERTY_TRANSFER actions.
type TransferView struct {
	From *model.PortfolioSummary `json:"from"`
	To   *model.PortfolioSummary `json:"to"`
}

type PendingActionResponse struct {
	model.PendingAction
	Transfer *TransferView `json:"transfer,omitempty"`
}

type PendingActionPage struct {
	Data  []PendingActionResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type PendingActionService interface {
	Create(ctx context.Context, req *CreatePendingActionRequest, requester *model.User) (*PendingActionResponse, error)
	FindAll(ctx context.Context, viewer *model.User, filter repository.PendingActionFilter) (*PendingActionPage, error)
	FindOne(ctx context.Context, viewer *model.User, id uuid.UUID) (*PendingActionResponse, error)
	Approve(ctx context.Context, id uuid.UUID, approver *model.User) (*PendingActionResponse, error)
	Reject(ctx context.Context, id uuid.UUID, approver *model.User, rejectionReason string) (*PendingActionResponse, error)
}

type pendingActionService struct {
	actionRepo    repository.PendingActionRepository
	permissions   PermissionService
	executor      ActionExecutor
	propertyRepo  repository.PropertyRepository
	portfolioRepo repository.PortfolioRepository
	auditRepo     repository.AuditRepository
	userRepo      repository.UserRepository
	notifier      Notifier
	logger        *logrus.Logger
	now           func() time.Time
}

func NewPendingActionService(
	actionRepo repository.PendingActionRepository,
	permissions PermissionService,
	executor ActionExecutor,
	propertyRepo repository.PropertyRepository,
	portfolioRepo repository.PortfolioRepository,
	auditRepo repository.AuditRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	logger *logrus.Logger,
) PendingActionService {
	return &pendingActionService{
		actionRepo:    actionRepo,
		permissions:   permissions,
		executor:      executor,
		propertyRepo:  propertyRepo,
		portfolioRepo: portfolioRepo,
		auditRepo:     auditRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *pendingActionService) Create(ctx context.Context, req *CreatePendingActionRequest, requester *model.User) (*PendingActionResponse, error) {
	if !requester.IsInternal() {
		return nil, apperror.Wrap(apperror.KindForbidden, ErrExternalUser, "Only internal users can request pending actions")
	}
	if req.ActionType == model.ActionTypePropertyDelete {
		return nil, apperror.Wrap(apperror.KindUnrecoverable, ErrRetiredAction,
			"Property delete actions can no longer be requested; super admins delete properties directly")
	}

	action := &model.PendingAction{
		ID:              uuid.New(),
		PropertyID:      req.PropertyID,
		PortfolioID:     req.PortfolioID,
		AuditID:         req.AuditID,
		ActionType:      req.ActionType,
		RequestedUserID: requester.ID,
		Reason:          strings.TrimSpace(req.Reason),
		Status:          model.PendingActionStatusPending,
		CreatedAt:       s.now(),
	}
	if req.TransferData != nil {
		action.SetTransfer(model.TransferData{NewPortfolioID: req.TransferData.NewPortfolioID})
	}
	if req.AuditUpdateData != nil {
		action.SetAuditUpdate(*req.AuditUpdateData)
	}

	op, err := OperationFor(action)
	if err != nil {
		return nil, err
	}
	module, resourceID, err := resourceOf(action)
	if err != nil {
		return nil, err
	}
	action.ResourceType = resourceTypeOf(module)

	if err := s.permissions.RequirePermission(ctx, requester, module, model.ActionUpdate, resourceID.String()); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, op); err != nil {
		return nil, err
	}

	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, apperror.Internal(err, "Failed to create pending action")
	}

	s.logger.WithFields(logrus.Fields{
		"pending_action_id": action.ID,
		"action_type":       action.ActionType,
		"requested_user_id": requester.ID,
	}).Info("Pending action created")

	s.notify(ctx, NotificationPendingActionCreated, s.superAdminIDs(ctx), action)
	return s.respond(ctx, action), nil
}

// checkTarget makes sure the resources the operation will touch exist.
func (s *pendingActionService) checkTarget(ctx context.Context, op Operation) error {
	switch op := op.(type) {
	case TransferPropertyOp:
		property, err := s.propertyRepo.FindByID(ctx, op.PropertyID)
		if err != nil {
			return notFoundOr(err, "Property not found")
		}
		if _, err := s.portfolioRepo.FindByID(ctx, op.NewPortfolioID); err != nil {
			return notFoundOr(err, "Target portfolio not found")
		}
		if property.PortfolioID == op.NewPortfolioID {
			return apperror.BadRequest("Property already belongs to the target portfolio")
		}
	case DeactivatePropertyOp:
		if _, err := s.propertyRepo.FindByID(ctx, op.PropertyID); err != nil {
			return notFoundOr(err, "Property not found")
		}
	case ActivatePropertyOp:
		if _, err := s.propertyRepo.FindByID(ctx, op.PropertyID); err != nil {
			return notFoundOr(err, "Property not found")
		}
	case DeactivatePortfolioOp:
		if _, err := s.portfolioRepo.FindByID(ctx, op.PortfolioID); err != nil {
			return notFoundOr(err, "Portfolio not found")
		}
	case UpdateAuditAmountOp:
		if _, err := s.auditRepo.FindByID(ctx, op.AuditID); err != nil {
			return notFoundOr(err, "Audit not found")
		}
	}
	return nil
}

func (s *pendingActionService) FindAll(ctx context.Context, viewer *model.User, filter repository.PendingActionFilter) (*PendingActionPage, error) {
	if !viewer.IsSuperAdmin() {
		filter.RequestedUserID = &viewer.ID
	}
	filter.Normalize()

	actions, total, err := s.actionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch pending actions")
	}

	page := &PendingActionPage{
		Data:  make([]PendingActionResponse, 0, len(actions)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range actions {
		page.Data = append(page.Data, *s.respond(ctx, &actions[i]))
	}
	return page, nil
}

func (s *pendingActionService) FindOne(ctx context.Context, viewer *model.User, id uuid.UUID) (*PendingActionResponse, error) {
	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Pending action not found")
	}
	// other users' requests are hidden rather than forbidden
	if !viewer.IsSuperAdmin() && action.RequestedUserID != viewer.ID {
		return nil, apperror.NotFound("Pending action not found")
	}
	return s.respond(ctx, action), nil
}

func (s *pendingActionService) Approve(ctx context.Context, id uuid.UUID, approver *model.User) (*PendingActionResponse, error) {
	action, err := s.loadForDecision(ctx, id, approver, "approve")
	if err != nil {
		return nil, err
	}

	op, err := OperationFor(action)
	if err != nil {
		return nil, err
	}

	decision := model.PendingActionDecision{
		Status:         model.PendingActionStatusApproved,
		ApprovalUserID: approver.ID,
		DecidedAt:      s.now(),
		TransferData:   s.snapshotTransfer(ctx, action),
	}
	err = s.actionRepo.Resolve(ctx, action.ID, decision, func(ctx context.Context) error {
		return op.Execute(ctx, s.executor)
	})
	if err != nil {
		return nil, s.decisionError(ctx, err, action.ID, "approve")
	}

	s.logger.WithFields(logrus.Fields{
		"pending_action_id": action.ID,
		"action_type":       action.ActionType,
		"approval_user_id":  approver.ID,
	}).Info("Pending action approved")

	return s.afterDecision(ctx, action.ID, NotificationPendingActionApproved)
}

func (s *pendingActionService) Reject(ctx context.Context, id uuid.UUID, approver *model.User, rejectionReason string) (*PendingActionResponse, error) {
	action, err := s.loadForDecision(ctx, id, approver, "reject")
	if err != nil {
		return nil, err
	}

	rejectionReason = strings.TrimSpace(rejectionReason)
	if rejectionReason == "" {
		return nil, apperror.BadRequest("rejection_reason is required")
	}

	decision := model.PendingActionDecision{
		Status:          model.PendingActionStatusRejected,
		ApprovalUserID:  approver.ID,
		RejectionReason: rejectionReason,
		DecidedAt:       s.now(),
		TransferData:    s.snapshotTransfer(ctx, action),
	}
	if err := s.actionRepo.Resolve(ctx, action.ID, decision, nil); err != nil {
		return nil, s.decisionError(ctx, err, action.ID, "reject")
	}

	s.logger.WithFields(logrus.Fields{
		"pending_action_id": action.ID,
		"action_type":       action.ActionType,
		"approval_user_id":  approver.ID,
	}).Info("Pending action rejected")

	return s.afterDecision(ctx, action.ID, NotificationPendingActionRejected)
}

func (s *pendingActionService) loadForDecision(ctx context.Context, id uuid.UUID, approver *model.User, verb string) (*model.PendingAction, error) {
	if !approver.IsSuperAdmin() {
		return nil, apperror.Wrap(apperror.KindForbidden, ErrNotSuperAdmin, "Only super admins can %s pending actions", verb)
	}
	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Pending action not found")
	}
	if action.Status != model.PendingActionStatusPending {
		return nil, invalidTransition(verb, action.Status)
	}
	return action, nil
}

func invalidTransition(verb string, status model.PendingActionStatus) error {
	return apperror.Wrap(apperror.KindBadRequest, ErrInvalidTransition, "cannot %s action with status: %s", verb, status)
}

// decisionError reports a lost race with the status that won it.
func (s *pendingActionService) decisionError(ctx context.Context, err error, id uuid.UUID, verb string) error {
	if !errors.Is(err, repository.ErrNotPending) {
		if apperror.KindOf(err) != apperror.KindInternal {
			return err
		}
		return apperror.Internal(err, "Failed to %s pending action", verb)
	}
	current, loadErr := s.actionRepo.FindByID(ctx, id)
	if loadErr != nil {
		return apperror.Wrap(apperror.KindBadRequest, ErrInvalidTransition, "cannot %s action: it is no longer pending", verb)
	}
	return invalidTransition(verb, current.Status)
}

func (s *pendingActionService) afterDecision(ctx context.Context, id uuid.UUID, kind string) (*PendingActionResponse, error) {
	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to reload pending action")
	}
	s.notify(ctx, kind, []uuid.UUID{action.RequestedUserID}, action)
	return s.respond(ctx, action), nil
}

// snapshotTransfer captures the source and target portfolios as they are
// when the decision is made, so later renames or moves don't rewrite history.
func (s *pendingActionService) snapshotTransfer(ctx context.Context, action *model.PendingAction) *model.TransferData {
	transfer := action.Transfer()
	if action.ActionType != model.ActionTypePropertyTransfer || transfer == nil {
		return nil
	}
	view := s.liveTransferView(ctx, action, transfer)
	transfer.PortfolioFrom = view.From
	transfer.PortfolioTo = view.To
	return transfer
}

func (s *pendingActionService) respond(ctx context.Context, action *model.PendingAction) *PendingActionResponse {
	resp := &PendingActionResponse{PendingAction: *action}
	if action.ActionType != model.ActionTypePropertyTransfer {
		return resp
	}
	transfer := action.Transfer()
	if transfer == nil {
		return resp
	}
	if transfer.PortfolioTo != nil {
		resp.Transfer = &TransferView{From: transfer.PortfolioFrom, To: transfer.PortfolioTo}
		return resp
	}
	resp.Transfer = s.liveTransferView(ctx, action, transfer)
	return resp
}

func (s *pendingActionService) liveTransferView(ctx context.Context, action *model.PendingAction, transfer *model.TransferData) *TransferView {
	view := &TransferView{}
	if action.PropertyID != nil {
		property, err := s.propertyRepo.FindByID(ctx, *action.PropertyID)
		if err != nil {
			s.logger.WithError(err).WithField("property_id", *action.PropertyID).Warn("Failed to resolve transfer source portfolio")
		} else {
			view.From = property.Portfolio.Summary()
		}
	}
	if transfer.NewPortfolioID != nil {
		portfolio, err := s.portfolioRepo.FindByID(ctx, *transfer.NewPortfolioID)
		if err != nil {
			s.logger.WithError(err).WithField("portfolio_id", *transfer.NewPortfolioID).Warn("Failed to resolve transfer target portfolio")
		} else {
			view.To = portfolio.Summary()
		}
	}
	return view
}

func (s *pendingActionService) superAdminIDs(ctx context.Context) []uuid.UUID {
	admins, err := s.userRepo.FindByRoleCode(ctx, model.RoleSuperAdmin)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load super admins for notification")
		return nil
	}
	ids := make([]uuid.UUID, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.ID)
	}
	return ids
}

// notify never fails the caller: errors and panics from the notifier are logged.
func (s *pendingActionService) notify(ctx context.Context, kind string, recipients []uuid.UUID, action *model.PendingAction) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).WithField("kind", kind).Error("Notifier panicked")
		}
	}()

	payload := map[string]interface{}{
		"pending_action_id": action.ID,
		"action_type":       action.ActionType,
		"status":            action.Status,
		"resource_type":     action.ResourceType,
	}
	if err := s.notifier.Notify(ctx, kind, recipients, payload); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"kind":              kind,
			"pending_action_id": action.ID,
		}).Warn("Failed to send notification")
	}
}
