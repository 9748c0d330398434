package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/pkg/apperror"
	"hotel-portfolio-api/pkg/jwt"
	"hotel-portfolio-api/pkg/password"
)

var ErrSessionReplaced = errors.New("session expired (logged in on another device)")

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
	Role  *model.Role        `json:"role"`
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *jwt.Manager
	passwords password.Verifier
	logger    *logrus.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, passwords password.Verifier, logger *logrus.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, email, plaintext string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Wrap(apperror.KindForbidden, ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, apperror.Internal(err, "Failed to load user")
	}
	if !user.IsActive {
		return nil, apperror.Wrap(apperror.KindForbidden, ErrUserInactive, "User account is inactive")
	}
	if !s.passwords.Verify(plaintext, user.Password) {
		return nil, apperror.Wrap(apperror.KindForbidden, ErrInvalidCredentials, "Invalid email or password")
	}

	// single session: a new login invalidates older tokens
	tokenVersion := uuid.New().String()
	if err := s.userRepo.UpdateSession(ctx, user.ID, tokenVersion); err != nil {
		return nil, apperror.Internal(err, "Failed to update session")
	}

	var roleID uint
	if user.RoleID != nil {
		roleID = *user.RoleID
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, roleID, !user.IsInternal(), tokenVersion)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to generate token")
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
		Role:  user.Role,
	}, nil
}

// Authenticate resolves a bearer token to the current user, reloading the
// role so permission changes apply without a new login.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, jwt.ErrInvalidToken
		}
		return nil, apperror.Internal(err, "Failed to load user")
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if !s.passwords.Verify(oldPassword, user.Password) {
		return apperror.Forbidden("Current password is incorrect")
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return apperror.Internal(err, "Failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return apperror.Internal(err, "Failed to update password")
	}
	// log out every other session
	if err := s.userRepo.UpdateSession(ctx, user.ID, uuid.New().String()); err != nil {
		return apperror.Internal(err, "Failed to rotate session")
	}
	s.logger.WithField("user_id", user.ID).Info("Password changed")
	return nil
}
