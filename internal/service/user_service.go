package service

import (
	"context"
	"errors"
	"strings"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
)

var (
	ErrEmailExists = apperror.Validation("email already exists")
	ErrSelfLockout = apperror.Forbidden("you cannot change your own role or deactivate yourself")
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, creator Actor) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updater Actor) (*model.User, error)
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, updater Actor) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	RoleCode    string `json:"role_code" validate:"required,oneof=ADMIN OFFICE WORKER"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	RoleCode    string  `json:"role_code" validate:"required,oneof=ADMIN OFFICE WORKER"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, creator Actor) (*model.User, error) {
	// 1. Validate request
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Check if email already exists
	if existing, _ := s.userRepo.FindByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	// 3. Resolve role
	role, err := s.roleRepo.FindByCode(ctx, req.RoleCode)
	if err != nil {
		return nil, referenceError(err, "role not found")
	}

	// 4. Create user with the role's privileges
	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		Privileges:  role.Privileges,
	}
	user.CreatedBy = creator.ID.String()
	user.UpdatedBy = creator.ID.String()

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Store(err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updater Actor) (*model.User, error) {
	// 1. Validate request
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Store(err)
	}

	// 3. Email must stay unique
	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(ctx, req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}

	// 4. Resolve role
	role, err := s.roleRepo.FindByCode(ctx, req.RoleCode)
	if err != nil {
		return nil, referenceError(err, "role not found")
	}

	// 5. Apply fields; a role change resets privileges to the role defaults
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID
	if user.ID == updater.ID && (roleChanged || (req.IsActive != nil && !*req.IsActive)) {
		return nil, ErrSelfLockout
	}
	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updater.ID.String()

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		user.TokenVersion = uuid.New().String()
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.Store(err)
	}
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(ctx, userID, role.Privileges); err != nil {
			return nil, apperror.Store(err)
		}
	}

	// 6. Reload and return
	updated, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return updated, nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, updater Actor) (*model.User, error) {
	// 1. Find user
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Store(err)
	}

	// 2. Resolve privileges
	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, apperror.Validation("unknown privilege code")
	}

	// 3. Replace and bump the token version so the new set applies on next login
	if err := s.userRepo.UpdatePrivileges(ctx, userID, privileges); err != nil {
		return nil, apperror.Store(err)
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		return nil, apperror.Store(err)
	}

	updated, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return updated, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}
	response := user.ToResponse()
	return &response, nil
}
