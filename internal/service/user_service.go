package service

import (
	"context"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/password"
	"hotel-portfolio-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor *model.User) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context, actor *model.User) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID, actor *model.User) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type userService struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	permissions PermissionService
	logger      *logrus.Logger
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, permissions PermissionService, logger *logrus.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		logger:      logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor *model.User) (*model.UserResponse, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperror.BadRequest("%s", msg)
	}
	if err := s.permissions.RequirePermission(ctx, actor, model.ModuleUser, model.ActionCreate, ""); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !isNotFound(err) {
		return nil, apperror.Internal(err, "Failed to check email")
	}
	if existing != nil {
		return nil, apperror.Wrap(apperror.KindBadRequest, ErrEmailExists, "Email already exists")
	}

	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, notFoundOr(err, "Role not found")
	}
	// only a super admin hands out the super admin role
	if role.IsSuperAdmin() && !actor.IsSuperAdmin() {
		return nil, apperror.Wrap(apperror.KindForbidden, ErrNotSuperAdmin, "Only super admins can create super admin users")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to hash password")
	}

	user := &model.User{
		Email:       req.Email,
		Password:    hashed,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
	}
	user.CreatedBy = actor.ID.String()
	user.UpdatedBy = actor.ID.String()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err, "Failed to create user")
	}
	user.Role = role

	for _, warning := range s.permissions.ValidateRoleConfiguration(role) {
		s.logger.WithFields(logrus.Fields{"role": role.Code, "user_id": user.ID}).Warn(warning)
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": role.Code, "actor_id": actor.ID}).Info("User created")

	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetAllUsers(ctx context.Context, actor *model.User) ([]model.UserResponse, error) {
	if err := s.permissions.RequirePermission(ctx, actor, model.ModuleUser, model.ActionRead, ""); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch users")
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID, actor *model.User) (*model.UserResponse, error) {
	if actor.ID != id {
		if err := s.permissions.RequirePermission(ctx, actor, model.ModuleUser, model.ActionRead, ""); err != nil {
			return nil, err
		}
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	response := user.ToResponse()
	return &response, nil
}
