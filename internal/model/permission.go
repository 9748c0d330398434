package model

import "fmt"

// PermissionLevel decides which CRUD actions a role may perform on a module.
type PermissionLevel string

const (
	PermissionLevelAll    PermissionLevel = "all"
	PermissionLevelUpdate PermissionLevel = "update"
	PermissionLevelView   PermissionLevel = "view"
)

func (l PermissionLevel) Valid() bool {
	switch l {
	case PermissionLevelAll, PermissionLevelUpdate, PermissionLevelView:
		return true
	}
	return false
}

// AccessLevel decides how many resources within a module a role may reach.
type AccessLevel string

const (
	AccessLevelAll     AccessLevel = "all"
	AccessLevelPartial AccessLevel = "partial"
	AccessLevelNone    AccessLevel = "none"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessLevelAll, AccessLevelPartial, AccessLevelNone:
		return true
	}
	return false
}

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

type ModuleType string

const (
	ModulePortfolio      ModuleType = "portfolio"
	ModuleProperty       ModuleType = "property"
	ModuleAudit          ModuleType = "audit"
	ModuleUser           ModuleType = "user"
	ModuleSystemSettings ModuleType = "system_settings"
	ModuleBankDetails    ModuleType = "bank_details"
)

// Modules lists every module a role carries a permission for.
var Modules = []ModuleType{
	ModulePortfolio,
	ModuleProperty,
	ModuleAudit,
	ModuleUser,
	ModuleSystemSettings,
	ModuleBankDetails,
}

func (m ModuleType) Valid() bool {
	for _, module := range Modules {
		if m == module {
			return true
		}
	}
	return false
}

// SupportsPartialAccess reports whether a partial grant on m is backed by an id-set.
func (m ModuleType) SupportsPartialAccess() bool {
	switch m {
	case ModulePortfolio, ModuleProperty, ModuleBankDetails:
		return true
	}
	return false
}

// Permission is the grant a role holds on one module. A zero value means no permission.
type Permission struct {
	PermissionLevel PermissionLevel `gorm:"type:varchar(20)" json:"permission_level,omitempty"`
	AccessLevel     AccessLevel     `gorm:"type:varchar(20)" json:"access_level,omitempty"`
}

// IsZero reports an unset permission column group.
func (p Permission) IsZero() bool {
	return p.PermissionLevel == "" && p.AccessLevel == ""
}

func (p Permission) Valid() bool {
	return p.PermissionLevel.Valid() && p.AccessLevel.Valid()
}

func (p Permission) IsFull() bool {
	return p.PermissionLevel == PermissionLevelAll && p.AccessLevel == AccessLevelAll
}

// crud order: create, read, update, delete
var permissionMatrix = map[PermissionLevel][4]bool{
	PermissionLevelAll:    {true, true, true, true},
	PermissionLevelUpdate: {true, true, true, false},
	PermissionLevelView:   {false, true, false, false},
}

// IsActionAllowed looks action up in the permission matrix.
// It panics on a level or action outside the enums.
func IsActionAllowed(level PermissionLevel, action Action) bool {
	row, ok := permissionMatrix[level]
	if !ok {
		panic(fmt.Sprintf("model: unknown permission level %q", level))
	}
	switch action {
	case ActionCreate:
		return row[0]
	case ActionRead:
		return row[1]
	case ActionUpdate:
		return row[2]
	case ActionDelete:
		return row[3]
	}
	panic(fmt.Sprintf("model: unknown action %q", action))
}
