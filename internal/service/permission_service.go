package service

import (
	"context"
	"fmt"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/database"
	"hotel-portfolio-api/pkg/password"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PermissionCheck is the outcome of the synchronous matrix check.
type PermissionCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type ReplaceAccessRequest struct {
	PortfolioIDs *[]string `json:"portfolio_id"`
	PropertyIDs  *[]string `json:"property_id"`
	Password     string    `json:"password" validate:"required"`
}

type PermissionService interface {
	ModuleSupportsPartialAccess(module model.ModuleType) bool
	CheckPermission(user *model.User, module model.ModuleType, action model.Action, resourceID string) PermissionCheck
	RequirePermission(ctx context.Context, user *model.User, module model.ModuleType, action model.Action, resourceID string) error
	CanAccessResource(ctx context.Context, user *model.User, module model.ModuleType, resourceID string) (bool, error)
	CheckPartialAccess(ctx context.Context, user *model.User, module model.ModuleType, resourceID string) (bool, error)
	GetAccessibleResourceIDs(ctx context.Context, user *model.User, module model.ModuleType) (model.AccessibleIDs, error)

	GrantResourceAccess(ctx context.Context, userID uuid.UUID, module model.ModuleType, resourceID string) error
	GetUserAccess(ctx context.Context, actor *model.User, userID uuid.UUID) (*model.UserAccess, error)
	AddAccess(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (*model.UserAccess, error)
	RevokeAccess(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (*model.UserAccess, error)
	ReplaceAccess(ctx context.Context, actor *model.User, userID uuid.UUID, req *ReplaceAccessRequest) (*model.UserAccess, error)
	UpdateUserAccessAfterPropertyTransfer(ctx context.Context, propertyID, newPortfolioID string) error

	ValidateRoleConfiguration(role *model.Role) []string
	IsSuperAdmin(role *model.Role) bool
	IsUserSuperAdmin(user *model.User) bool
}

type permissionService struct {
	accessRepo repository.UserAccessRepository
	userRepo   repository.UserRepository
	tx         database.Transactor
	passwords  password.Verifier
	logger     *logrus.Logger
}

func NewPermissionService(accessRepo repository.UserAccessRepository, userRepo repository.UserRepository, tx database.Transactor, passwords password.Verifier, logger *logrus.Logger) PermissionService {
	return &permissionService{
		accessRepo: accessRepo,
		userRepo:   userRepo,
		tx:         tx,
		passwords:  passwords,
		logger:     logger,
	}
}

func (s *permissionService) ModuleSupportsPartialAccess(module model.ModuleType) bool {
	return module.SupportsPartialAccess()
}

// CheckPermission runs the matrix check only. For partial access with a
// resource id it answers optimistically; RequirePermission adds the
// id-set membership check.
func (s *permissionService) CheckPermission(user *model.User, module model.ModuleType, action model.Action, resourceID string) PermissionCheck {
	var role *model.Role
	if user != nil {
		role = user.Role
	}

	perm, ok := role.PermissionFor(module)
	if !ok {
		return PermissionCheck{Reason: fmt.Sprintf("No permission found for module: %s", module)}
	}
	if !perm.Valid() {
		return PermissionCheck{Reason: fmt.Sprintf("Invalid permission configuration for module: %s", module)}
	}
	if perm.AccessLevel == model.AccessLevelNone {
		return PermissionCheck{Reason: fmt.Sprintf("No access to module: %s", module)}
	}
	if perm.AccessLevel == model.AccessLevelPartial && !module.SupportsPartialAccess() {
		return PermissionCheck{Reason: fmt.Sprintf("No access to module: %s (partial access is not supported)", module)}
	}
	if !model.IsActionAllowed(perm.PermissionLevel, action) {
		return PermissionCheck{Reason: fmt.Sprintf("Action '%s' is not permitted for permission level '%s' on module: %s", action, perm.PermissionLevel, module)}
	}

	return PermissionCheck{Allowed: true}
}

func (s *permissionService) RequirePermission(ctx context.Context, user *model.User, module model.ModuleType, action model.Action, resourceID string) error {
	check := s.CheckPermission(user, module, action, resourceID)
	if !check.Allowed {
		return apperror.Wrap(apperror.KindForbidden, ErrPermissionDenied, "%s", check.Reason)
	}

	if resourceID == "" || user.Role.AccessLevelFor(module) != model.AccessLevelPartial {
		return nil
	}

	inSet, err := s.CheckPartialAccess(ctx, user, module, resourceID)
	if err != nil {
		return err
	}
	if !inSet {
		return apperror.Wrap(apperror.KindForbidden, ErrResourceNotAccessible,
			"Resource %s is not in your accessible %s set", resourceID, module)
	}
	return nil
}

func (s *permissionService) CanAccessResource(ctx context.Context, user *model.User, module model.ModuleType, resourceID string) (bool, error) {
	ids, err := s.GetAccessibleResourceIDs(ctx, user, module)
	if err != nil {
		return false, err
	}
	return ids.Contains(resourceID), nil
}

func (s *permissionService) CheckPartialAccess(ctx context.Context, user *model.User, module model.ModuleType, resourceID string) (bool, error) {
	ids, err := s.GetAccessibleResourceIDs(ctx, user, module)
	if err != nil {
		return false, err
	}
	if ids.All {
		return true, nil
	}
	return ids.Contains(resourceID), nil
}

// GetAccessibleResourceIDs resolves the user's scope on module. A partial
// grant on a module without an id-set resolves to nothing, never to everything.
func (s *permissionService) GetAccessibleResourceIDs(ctx context.Context, user *model.User, module model.ModuleType) (model.AccessibleIDs, error) {
	if user == nil {
		return model.OnlyResources(nil), nil
	}

	switch user.Role.AccessLevelFor(module) {
	case model.AccessLevelAll:
		return model.AllResources(), nil
	case model.AccessLevelPartial:
	default:
		return model.OnlyResources(nil), nil
	}

	field, ok := model.AccessFieldFor(module)
	if !ok {
		return model.OnlyResources(nil), nil
	}

	access, err := s.accessRepo.FindByUserID(ctx, user.ID)
	if isNotFound(err) {
		return model.OnlyResources(nil), nil
	}
	if err != nil {
		return model.AccessibleIDs{}, apperror.Internal(err, "Failed to load access list")
	}

	ids := append([]string(nil), access.IDs(field)...)
	return model.OnlyResources(ids), nil
}

// GrantResourceAccess appends resourceID to the user's id-set for module.
// Modules without an id-set of their own are skipped.
func (s *permissionService) GrantResourceAccess(ctx context.Context, userID uuid.UUID, module model.ModuleType, resourceID string) error {
	if module != model.ModulePortfolio && module != model.ModuleProperty {
		return nil
	}
	field, _ := model.AccessFieldFor(module)
	if err := s.accessRepo.AddIDs(ctx, userID, field, []string{resourceID}); err != nil {
		return apperror.Internal(err, "Failed to grant access")
	}
	return nil
}

func (s *permissionService) GetUserAccess(ctx context.Context, actor *model.User, userID uuid.UUID) (*model.UserAccess, error) {
	if actor.ID != userID {
		if err := s.RequirePermission(ctx, actor, model.ModuleUser, model.ActionRead, ""); err != nil {
			return nil, err
		}
	}
	return s.loadAccess(ctx, userID)
}

func (s *permissionService) AddAccess(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (*model.UserAccess, error) {
	field, err := s.prepareMutation(ctx, actor, userID, module, resourceIDs)
	if err != nil {
		return nil, err
	}
	if err := s.accessRepo.AddIDs(ctx, userID, field, resourceIDs); err != nil {
		return nil, apperror.Internal(err, "Failed to add access")
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"user_id":  userID,
		"module":   module,
		"count":    len(resourceIDs),
	}).Info("Access granted")
	return s.loadAccess(ctx, userID)
}

func (s *permissionService) RevokeAccess(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (*model.UserAccess, error) {
	field, err := s.prepareMutation(ctx, actor, userID, module, resourceIDs)
	if err != nil {
		return nil, err
	}
	if err := s.accessRepo.RemoveIDs(ctx, userID, field, resourceIDs); err != nil {
		return nil, apperror.Internal(err, "Failed to revoke access")
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"user_id":  userID,
		"module":   module,
		"count":    len(resourceIDs),
	}).Info("Access revoked")
	return s.loadAccess(ctx, userID)
}

func (s *permissionService) ReplaceAccess(ctx context.Context, actor *model.User, userID uuid.UUID, req *ReplaceAccessRequest) (*model.UserAccess, error) {
	if req.PortfolioIDs == nil && req.PropertyIDs == nil {
		return nil, apperror.BadRequest("portfolio_id or property_id is required")
	}
	if !s.passwords.Verify(req.Password, actor.Password) {
		return nil, apperror.Forbidden("Invalid password")
	}

	target, err := s.authorizeMutation(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	type replacement struct {
		module model.ModuleType
		ids    []string
	}
	var replacements []replacement
	if req.PortfolioIDs != nil {
		replacements = append(replacements, replacement{model.ModulePortfolio, *req.PortfolioIDs})
	}
	if req.PropertyIDs != nil {
		replacements = append(replacements, replacement{model.ModuleProperty, *req.PropertyIDs})
	}
	for _, r := range replacements {
		if err := requirePartialRole(target, r.module); err != nil {
			return nil, err
		}
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		for _, r := range replacements {
			field, _ := model.AccessFieldFor(r.module)
			if err := s.accessRepo.ReplaceIDs(ctx, userID, field, r.ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal(err, "Failed to replace access")
	}

	s.logger.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": userID}).Info("Access list replaced")
	return s.loadAccess(ctx, userID)
}

// UpdateUserAccessAfterPropertyTransfer drops propertyID from users who can
// no longer reach it through their partial portfolio set.
func (s *permissionService) UpdateUserAccessAfterPropertyTransfer(ctx context.Context, propertyID, newPortfolioID string) error {
	accesses, err := s.accessRepo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return apperror.Internal(err, "Failed to load access lists for property %s", propertyID)
	}
	if len(accesses) == 0 {
		return nil
	}

	userIDs := make([]uuid.UUID, 0, len(accesses))
	for _, access := range accesses {
		userIDs = append(userIDs, access.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return apperror.Internal(err, "Failed to load users for property %s", propertyID)
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range accesses {
		access := &accesses[i]
		user, ok := byID[access.UserID]
		if !ok {
			continue
		}

		switch user.Role.AccessLevelFor(model.ModulePortfolio) {
		case model.AccessLevelNone:
			// property access never depended on portfolio access
			continue
		case model.AccessLevelAll:
			continue
		case model.AccessLevelPartial:
			if access.Contains(model.AccessFieldPortfolio, newPortfolioID) {
				continue
			}
			if err := s.accessRepo.RemoveIDs(ctx, user.ID, model.AccessFieldProperty, []string{propertyID}); err != nil {
				return apperror.Internal(err, "Failed to update access for user %s", user.ID)
			}
			s.logger.WithFields(logrus.Fields{
				"user_id":          user.ID,
				"property_id":      propertyID,
				"new_portfolio_id": newPortfolioID,
			}).Info("Property access removed after transfer")
		}
	}
	return nil
}

func (s *permissionService) ValidateRoleConfiguration(role *model.Role) []string {
	warnings := []string{}
	if role == nil {
		return warnings
	}

	for _, module := range model.Modules {
		perm, ok := role.PermissionFor(module)
		if !ok {
			continue
		}
		if !perm.Valid() {
			warnings = append(warnings, fmt.Sprintf("Module %s has an invalid permission configuration (%q/%q); it will be denied", module, perm.PermissionLevel, perm.AccessLevel))
			continue
		}
		if perm.AccessLevel == model.AccessLevelPartial && !module.SupportsPartialAccess() {
			warnings = append(warnings, fmt.Sprintf("Module %s does not support partial access; it will be treated as no access", module))
		}
		if perm.AccessLevel == model.AccessLevelNone {
			warnings = append(warnings, fmt.Sprintf("Module %s has permission level %s but access level none; the level has no effect", module, perm.PermissionLevel))
		}
	}

	if role.AccessLevelFor(model.ModuleBankDetails) == model.AccessLevelPartial {
		if propertyAccess := role.AccessLevelFor(model.ModuleProperty); propertyAccess != model.AccessLevelPartial {
			warnings = append(warnings, fmt.Sprintf("Bank details partial access follows the property access list, but property access is %s", propertyAccess))
		}
	}
	return warnings
}

func (s *permissionService) IsSuperAdmin(role *model.Role) bool {
	return role.IsSuperAdmin()
}

func (s *permissionService) IsUserSuperAdmin(user *model.User) bool {
	return user.IsSuperAdmin()
}

// authorizeMutation checks the actor may edit userID's access list and loads the target.
func (s *permissionService) authorizeMutation(ctx context.Context, actor *model.User, userID uuid.UUID) (*model.User, error) {
	if actor.ID == userID {
		return nil, apperror.Forbidden("You cannot modify your own access list")
	}
	if err := s.RequirePermission(ctx, actor, model.ModuleUser, model.ActionUpdate, ""); err != nil {
		return nil, err
	}
	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return target, nil
}

func (s *permissionService) prepareMutation(ctx context.Context, actor *model.User, userID uuid.UUID, module model.ModuleType, resourceIDs []string) (model.AccessField, error) {
	switch module {
	case model.ModulePortfolio, model.ModuleProperty:
	case model.ModuleBankDetails:
		return "", apperror.BadRequest("Bank details access is derived from property access; update property access instead")
	default:
		return "", apperror.BadRequest("Module %s does not support partial access", module)
	}
	if len(model.UniqueIDs(resourceIDs)) == 0 {
		return "", apperror.BadRequest("At least one resource id is required")
	}

	target, err := s.authorizeMutation(ctx, actor, userID)
	if err != nil {
		return "", err
	}
	if err := requirePartialRole(target, module); err != nil {
		return "", err
	}

	field, _ := model.AccessFieldFor(module)
	return field, nil
}

func requirePartialRole(target *model.User, module model.ModuleType) error {
	if level := target.Role.AccessLevelFor(module); level != model.AccessLevelPartial {
		return apperror.BadRequest("User's role has %s access to %s; only partial access uses an access list", level, module)
	}
	return nil
}

func (s *permissionService) loadAccess(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error) {
	access, err := s.accessRepo.FindByUserID(ctx, userID)
	if isNotFound(err) {
		return &model.UserAccess{UserID: userID, PortfolioIDs: []string{}, PropertyIDs: []string{}}, nil
	}
	if err != nil {
		return nil, apperror.Internal(err, "Failed to load access list")
	}
	return access, nil
}
