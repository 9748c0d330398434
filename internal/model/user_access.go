package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserAccess holds the id-sets a partial-access user may reach. One row per user.
type UserAccess struct {
	BaseModel
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PortfolioIDs pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"portfolio_id"`
	PropertyIDs  pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"property_id"`
}

func (UserAccess) TableName() string {
	return "user_accesses"
}

// AccessField names the id-set column backing a partial-capable module.
type AccessField string

const (
	AccessFieldPortfolio AccessField = "portfolio_ids"
	AccessFieldProperty  AccessField = "property_ids"
)

// AccessFieldFor maps a module to its id-set. bank_details shares the property set.
func AccessFieldFor(module ModuleType) (AccessField, bool) {
	switch module {
	case ModulePortfolio:
		return AccessFieldPortfolio, true
	case ModuleProperty, ModuleBankDetails:
		return AccessFieldProperty, true
	}
	return "", false
}

// IDs returns the id-set stored under field.
func (a *UserAccess) IDs(field AccessField) []string {
	if a == nil {
		return nil
	}
	switch field {
	case AccessFieldPortfolio:
		return a.PortfolioIDs
	case AccessFieldProperty:
		return a.PropertyIDs
	}
	return nil
}

// Contains reports whether id is in the set stored under field.
func (a *UserAccess) Contains(field AccessField, id string) bool {
	for _, existing := range a.IDs(field) {
		if existing == id {
			return true
		}
	}
	return false
}

// UniqueIDs drops duplicates and empty ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AccessibleIDs is the resolved scope of a user on a module: either every
// resource (All) or exactly IDs. It must not be materialized into a list when All is set.
type AccessibleIDs struct {
	All bool
	IDs []string
}

func AllResources() AccessibleIDs {
	return AccessibleIDs{All: true}
}

func OnlyResources(ids []string) AccessibleIDs {
	if ids == nil {
		ids = []string{}
	}
	return AccessibleIDs{IDs: ids}
}

// Contains reports whether id falls inside the scope.
func (a AccessibleIDs) Contains(id string) bool {
	if a.All {
		return true
	}
	for _, existing := range a.IDs {
		if existing == id {
			return true
		}
	}
	return false
}
