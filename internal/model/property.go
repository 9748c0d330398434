package model

import "github.com/google/uuid"

type Portfolio struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Properties []Property `json:"properties,omitempty"`
}

type Property struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address     string     `gorm:"type:text" json:"address"`
	PortfolioID uuid.UUID  `gorm:"type:uuid;not null;index" json:"portfolio_id" validate:"uuid_required"`
	Portfolio   *Portfolio `gorm:"foreignKey:PortfolioID" json:"portfolio,omitempty" validate:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}

// PortfolioSummary is the snapshot of a portfolio kept on transfer actions.
type PortfolioSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (p *Portfolio) Summary() *PortfolioSummary {
	if p == nil {
		return nil
	}
	return &PortfolioSummary{ID: p.ID, Name: p.Name}
}
