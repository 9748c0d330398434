package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PendingActionStatus string

const (
	PendingActionStatusPending  PendingActionStatus = "PENDING"
	PendingActionStatusApproved PendingActionStatus = "APPROVED"
	PendingActionStatusRejected PendingActionStatus = "REJECTED"
)

func (s PendingActionStatus) IsTerminal() bool {
	return s == PendingActionStatusApproved || s == PendingActionStatusRejected
}

type PendingActionResourceType string

const (
	ResourceTypeProperty  PendingActionResourceType = "property"
	ResourceTypePortfolio PendingActionResourceType = "portfolio"
	ResourceTypeAudit     PendingActionResourceType = "audit"
)

type PendingActionType string

const (
	ActionTypePropertyTransfer           PendingActionType = "PROPERTY_TRANSFER"
	ActionTypePropertyDeactivate         PendingActionType = "PROPERTY_DEACTIVATE"
	ActionTypePropertyActivate           PendingActionType = "PROPERTY_ACTIVATE"
	ActionTypePortfolioDeactivate        PendingActionType = "PORTFOLIO_DEACTIVATE"
	ActionTypeAuditUpdateAmountConfirmed PendingActionType = "AUDIT_UPDATE_AMOUNT_CONFIRMED"

	// ActionTypePropertyDelete is retired. Old rows still load but it can be neither created nor approved.
	ActionTypePropertyDelete PendingActionType = "PROPERTY_DELETE"
)

// TransferData is the payload of a PROPERTY_TRANSFER action. The portfolio
// snapshots are filled in when the action is decided.
type TransferData struct {
	NewPortfolioID *uuid.UUID        `json:"new_portfolio_id,omitempty"`
	PortfolioFrom  *PortfolioSummary `json:"portfolio_from,omitempty"`
	PortfolioTo    *PortfolioSummary `json:"portfolio_to,omitempty"`
}

type AuditUpdateData struct {
	AmountConfirmed *float64 `json:"amount_confirmed,omitempty"`
}

// PendingAction is a deferred mutation awaiting a super admin decision. Rows are never deleted.
type PendingAction struct {
	ID              uuid.UUID                            `gorm:"type:uuid;primary_key;" json:"id"`
	ResourceType    PendingActionResourceType            `gorm:"type:varchar(20);not null;index" json:"resource_type"`
	PropertyID      *uuid.UUID                           `gorm:"type:uuid;index" json:"property_id,omitempty"`
	PortfolioID     *uuid.UUID                           `gorm:"type:uuid;index" json:"portfolio_id,omitempty"`
	AuditID         *uuid.UUID                           `gorm:"type:uuid;index" json:"audit_id,omitempty"`
	ActionType      PendingActionType                    `gorm:"type:varchar(50);not null;index" json:"action_type"`
	RequestedUserID uuid.UUID                            `gorm:"type:uuid;not null;index" json:"requested_user_id"`
	TransferData    *datatypes.JSONType[TransferData]    `gorm:"type:jsonb" json:"transfer_data,omitempty"`
	AuditUpdateData *datatypes.JSONType[AuditUpdateData] `gorm:"type:jsonb" json:"audit_update_data,omitempty"`
	Reason          string                               `gorm:"type:text" json:"reason,omitempty"`
	Status          PendingActionStatus                  `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`
	ApprovalUserID  *uuid.UUID                           `gorm:"type:uuid" json:"approval_user_id,omitempty"`
	RejectionReason string                               `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                            `gorm:"index" json:"created_at"`
	ApprovedAt      *time.Time                           `json:"approved_at,omitempty"`

	RequestedUser *User `gorm:"foreignKey:RequestedUserID" json:"requested_user,omitempty"`
}

func (PendingAction) TableName() string {
	return "pending_actions"
}

// Transfer returns the transfer payload, or nil when none is stored.
func (a *PendingAction) Transfer() *TransferData {
	if a.TransferData == nil {
		return nil
	}
	data := a.TransferData.Data()
	return &data
}

func (a *PendingAction) SetTransfer(data TransferData) {
	v := datatypes.NewJSONType(data)
	a.TransferData = &v
}

// AuditUpdate returns the audit payload, or nil when none is stored.
func (a *PendingAction) AuditUpdate() *AuditUpdateData {
	if a.AuditUpdateData == nil {
		return nil
	}
	data := a.AuditUpdateData.Data()
	return &data
}

func (a *PendingAction) SetAuditUpdate(data AuditUpdateData) {
	v := datatypes.NewJSONType(data)
	a.AuditUpdateData = &v
}

// PendingActionDecision carries the fields written by an approve or reject.
type PendingActionDecision struct {
	Status          PendingActionStatus
	ApprovalUserID  uuid.UUID
	RejectionReason string
	DecidedAt       time.Time
	TransferData    *TransferData
}
