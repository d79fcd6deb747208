package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// sessionIdleTimeout is how long a session survives without a heartbeat.
const sessionIdleTimeout = 5 * time.Minute

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

// SessionInfo is what the client needs to render the user's menu.
type SessionInfo struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type LoginResponse struct {
	Token string `json:"token"`
	SessionInfo
}

type TokenValidationResponse struct {
	SessionInfo
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	wsHub    Broadcaster
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, hub Broadcaster) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		wsHub:    hub,
		now:      time.Now,
	}
}

func sessionOf(user *model.User) SessionInfo {
	return SessionInfo{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}
}

// Login checks the credentials and starts a new session. Any token issued
// before is invalidated, so a user is logged in on one device at a time.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	seen := s.now()
	user.TokenVersion = uuid.NewString()
	user.LastSeenAt = &seen
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.New("failed to start session")
	}

	token, err := s.tokens.Issue(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.announce(user.ID, "online", seen)
	return &LoginResponse{Token: token, SessionInfo: sessionOf(user)}, nil
}

// ResetPassword replaces the password and ends the current session.
func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	user.TokenVersion = uuid.NewString()
	return s.userRepo.Update(ctx, user)
}

// ValidateToken accepts a token only for the user's current session and only
// while heartbeats keep arriving.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	switch {
	case err != nil:
		return nil, ErrUserNotFound
	case !user.IsActive:
		return nil, ErrUserInactive
	case user.TokenVersion != claims.TokenVersion:
		return nil, ErrSessionReplaced
	case user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > sessionIdleTimeout:
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{SessionInfo: sessionOf(user)}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		return err
	}
	s.announce(userID, "online", s.now())
	return nil
}

// announce pushes a presence change to every connected client.
func (s *authService) announce(userID uuid.UUID, status string, at time.Time) {
	go broadcast(s.wsHub, map[string]interface{}{
		"type":         "user_status_update",
		"user_id":      userID.String(),
		"status":       status,
		"last_seen_at": at,
	})
}
