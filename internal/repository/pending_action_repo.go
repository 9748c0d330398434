package repository

import (
	"context"
	"errors"
	"strings"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/database"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotPending is returned by Resolve when the action left PENDING before the update ran.
var ErrNotPending = errors.New("pending action is no longer pending")

type PendingActionFilter struct {
	Status          model.PendingActionStatus       `query:"status"`
	ActionType      model.PendingActionType         `query:"action_type"`
	ResourceType    model.PendingActionResourceType `query:"resource_type"`
	RequestedUserID *uuid.UUID                      `query:"-"`
	PropertyID      *uuid.UUID                      `query:"-"`
	SortBy          string                          `query:"sort_by"`
	SortOrder       string                          `query:"sort_order"`
	Page            int                             `query:"page"`
	Limit           int                             `query:"limit"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var pendingActionSortColumns = map[string]string{
	"created_at":  "created_at",
	"approved_at": "approved_at",
	"status":      "status",
	"action_type": "action_type",
}

// Normalize clamps paging and falls back to newest-first ordering.
func (f *PendingActionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	if _, ok := pendingActionSortColumns[f.SortBy]; !ok {
		f.SortBy = "created_at"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		f.SortOrder = "ASC"
	} else {
		f.SortOrder = "DESC"
	}
}

type PendingActionRepository interface {
	Create(ctx context.Context, action *model.PendingAction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PendingAction, error)
	FindAll(ctx context.Context, filter PendingActionFilter) ([]model.PendingAction, int64, error)

	// Resolve moves the action out of PENDING and runs apply in the same
	// transaction. It returns ErrNotPending if another decision won the race;
	// an apply error rolls the transition back.
	Resolve(ctx context.Context, id uuid.UUID, decision model.PendingActionDecision, apply func(ctx context.Context) error) error
}

type pendingActionRepo struct {
	db *gorm.DB
}

func NewPendingActionRepo(db *gorm.DB) PendingActionRepository {
	return &pendingActionRepo{db}
}

func (r *pendingActionRepo) Create(ctx context.Context, action *model.PendingAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	return database.Conn(ctx, r.db).Create(action).Error
}

func (r *pendingActionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PendingAction, error) {
	var action model.PendingAction
	if err := database.Conn(ctx, r.db).Preload("RequestedUser").First(&action, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *pendingActionRepo) FindAll(ctx context.Context, filter PendingActionFilter) ([]model.PendingAction, int64, error) {
	filter.Normalize()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var actions []model.PendingAction
	err := r.filtered(ctx, filter).Preload("RequestedUser").
		Order(pendingActionSortColumns[filter.SortBy] + " " + filter.SortOrder).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&actions).Error
	return actions, total, err
}

func (r *pendingActionRepo) filtered(ctx context.Context, filter PendingActionFilter) *gorm.DB {
	query := database.Conn(ctx, r.db).Model(&model.PendingAction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.RequestedUserID != nil {
		query = query.Where("requested_user_id = ?", *filter.RequestedUserID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	return query
}

func (r *pendingActionRepo) Resolve(ctx context.Context, id uuid.UUID, decision model.PendingActionDecision, apply func(ctx context.Context) error) error {
	return database.Transaction(ctx, r.db, func(ctx context.Context) error {
		updates := map[string]interface{}{
			"status":           decision.Status,
			"approval_user_id": decision.ApprovalUserID,
			"rejection_reason": decision.RejectionReason,
			"approved_at":      decision.DecidedAt,
		}
		if decision.TransferData != nil {
			updates["transfer_data"] = datatypes.NewJSONType(*decision.TransferData)
		}

		result := database.Conn(ctx, r.db).Model(&model.PendingAction{}).
			Where("id = ? AND status = ?", id, model.PendingActionStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotPending
		}

		if apply == nil {
			return nil
		}
		return apply(ctx)
	})
}
