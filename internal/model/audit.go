package model

import "github.com/google/uuid"

// Audit is a property audit; AmountConfirmed is only changed through an approved pending action.
type Audit struct {
	BaseModel
	PropertyID      uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id" validate:"uuid_required"`
	Property        *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty" validate:"-"`
	Status          string    `gorm:"type:varchar(30)" json:"status"`
	AmountCollected float64   `gorm:"type:numeric(14,2);default:0" json:"amount_collected"`
	AmountConfirmed *float64  `gorm:"type:numeric(14,2)" json:"amount_confirmed"`
	Note            string    `json:"note"`
}
