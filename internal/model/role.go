package model

// Role bundles one Permission per module.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string `gorm:"type:varchar(100)" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// IsExternal marks portfolio/property customer roles as opposed to internal staff.
	IsExternal bool `gorm:"default:false" json:"is_external"`

	PortfolioPermission      Permission `gorm:"embedded;embeddedPrefix:portfolio_" json:"portfolio_permission"`
	PropertyPermission       Permission `gorm:"embedded;embeddedPrefix:property_" json:"property_permission"`
	AuditPermission          Permission `gorm:"embedded;embeddedPrefix:audit_" json:"audit_permission"`
	UserPermission           Permission `gorm:"embedded;embeddedPrefix:user_" json:"user_permission"`
	SystemSettingsPermission Permission `gorm:"embedded;embeddedPrefix:system_settings_" json:"system_settings_permission"`
	BankDetailsPermission    Permission `gorm:"embedded;embeddedPrefix:bank_details_" json:"bank_details_permission"`
}

// PermissionFor returns the role's permission on module. ok is false when
// the role holds no permission for it, which callers treat as access none.
func (r *Role) PermissionFor(module ModuleType) (perm Permission, ok bool) {
	if r == nil {
		return Permission{}, false
	}
	switch module {
	case ModulePortfolio:
		perm = r.PortfolioPermission
	case ModuleProperty:
		perm = r.PropertyPermission
	case ModuleAudit:
		perm = r.AuditPermission
	case ModuleUser:
		perm = r.UserPermission
	case ModuleSystemSettings:
		perm = r.SystemSettingsPermission
	case ModuleBankDetails:
		perm = r.BankDetailsPermission
	default:
		return Permission{}, false
	}
	if perm.IsZero() {
		return Permission{}, false
	}
	return perm, true
}

// AccessLevelFor collapses an absent or malformed permission into AccessLevelNone.
func (r *Role) AccessLevelFor(module ModuleType) AccessLevel {
	perm, ok := r.PermissionFor(module)
	if !ok || !perm.Valid() {
		return AccessLevelNone
	}
	return perm.AccessLevel
}

// IsSuperAdmin reports a role holding all/all on every module.
func (r *Role) IsSuperAdmin() bool {
	if r == nil {
		return false
	}
	for _, module := range Modules {
		perm, ok := r.PermissionFor(module)
		if !ok || !perm.IsFull() {
			return false
		}
	}
	return true
}

// Role codes seeded at startup
const (
	RoleSuperAdmin       = "SUPER_ADMIN"
	RolePortfolioManager = "PORTFOLIO_MANAGER"
	RolePropertyAuditor  = "PROPERTY_AUDITOR"
	RolePropertyOwner    = "PROPERTY_OWNER"
)

func full() Permission {
	return Permission{PermissionLevel: PermissionLevelAll, AccessLevel: AccessLevelAll}
}

// DefaultRoles defines the roles seeded at startup
var DefaultRoles = []Role{
	{
		Code:                     RoleSuperAdmin,
		Name:                     "Super Administrator",
		Description:              "Full access to every module and approval of pending actions",
		PortfolioPermission:      full(),
		PropertyPermission:       full(),
		AuditPermission:          full(),
		UserPermission:           full(),
		SystemSettingsPermission: full(),
		BankDetailsPermission:    full(),
	},
	{
		Code:                  RolePortfolioManager,
		Name:                  "Portfolio Manager",
		Description:           "Manages the portfolios and properties assigned to them",
		PortfolioPermission:   Permission{PermissionLevelUpdate, AccessLevelPartial},
		PropertyPermission:    Permission{PermissionLevelUpdate, AccessLevelPartial},
		AuditPermission:       Permission{PermissionLevelUpdate, AccessLevelAll},
		UserPermission:        Permission{PermissionLevelView, AccessLevelAll},
		BankDetailsPermission: Permission{PermissionLevelUpdate, AccessLevelPartial},
	},
	{
		Code:                RolePropertyAuditor,
		Name:                "Property Auditor",
		Description:         "Audits the properties assigned to them",
		PortfolioPermission: Permission{PermissionLevelView, AccessLevelNone},
		PropertyPermission:  Permission{PermissionLevelView, AccessLevelPartial},
		AuditPermission:     Permission{PermissionLevelUpdate, AccessLevelAll},
	},
	{
		Code:                  RolePropertyOwner,
		Name:                  "Property Owner",
		Description:           "External customer viewing their own properties",
		IsExternal:            true,
		PropertyPermission:    Permission{PermissionLevelView, AccessLevelPartial},
		AuditPermission:       Permission{PermissionLevelView, AccessLevelAll},
		BankDetailsPermission: Permission{PermissionLevelUpdate, AccessLevelPartial},
	},
}
