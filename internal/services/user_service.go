// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

var (
	ErrRoleChangeDenied = errors.New("role change not permitted")
	ErrInvalidRole      = errors.New("invalid role")
)

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
}

type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Password string `json:"password,omitempty" validate:"omitempty,strong_password"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer seller admin"`
}

type CreditBalanceRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

func (s *UserService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

func (s *UserService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "role"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// ChangeRole moves a user between roles. Only admins may change roles,
// enforced by the role matrix on the model.
func (s *UserService) ChangeRole(actorRole models.UserRole, targetID uuid.UUID, req *ChangeRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !models.ValidUserRole(req.Role) {
		return nil, ErrInvalidRole
	}

	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	newRole := models.UserRole(req.Role)
	if !models.CanChangeRole(actorRole, user.Role, newRole) {
		return nil, ErrRoleChangeDenied
	}

	if err := s.db.Model(&user).UpdateColumn("role", newRole).Error; err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}
	user.Role = newRole

	return &user, nil
}

// CreditBalance tops up the internal balance used as a payment method.
func (s *UserService) CreditBalance(targetID uuid.UUID, req *CreditBalanceRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.db.Model(&user).
		UpdateColumn("balance", gorm.Expr("balance + ?", req.Amount)).Error; err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	// Re-read for the fresh balance
	if err := s.db.First(&user, targetID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return &user, nil
}

func (s *UserService) DeleteUser(targetID uuid.UUID) error {
	result := s.db.Delete(&models.User{}, targetID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
