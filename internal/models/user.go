// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:100;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);default:'customer';index"`
	Balance      float64  `json:"balance" gorm:"type:decimal(10,2);default:0"`

	// Password reset token (SHA-256 of the emailed token) and OTP hash.
	ResetTokenHash     string     `json:"-" gorm:"size:64"`
	ResetTokenExpires  *time.Time `json:"-"`
	OTPHash            string     `json:"-" gorm:"size:64"`
	OTPExpires         *time.Time `json:"-"`
	LastLoginAt        *time.Time `json:"last_login_at"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:SellerID"`
	Orders   []Order   `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// ResetTokenValid reports whether hash matches the stored reset token hash
// and the token has not expired at the given instant.
func (u *User) ResetTokenValid(hash string, now time.Time) bool {
	if u.ResetTokenHash == "" || u.ResetTokenExpires == nil {
		return false
	}
	return u.ResetTokenHash == hash && now.Before(*u.ResetTokenExpires)
}

// OTPValid reports whether hash matches the stored OTP hash and the code has
// not expired at the given instant.
func (u *User) OTPValid(hash string, now time.Time) bool {
	if u.OTPHash == "" || u.OTPExpires == nil {
		return false
	}
	return u.OTPHash == hash && now.Before(*u.OTPExpires)
}

// ClearResetToken removes any pending reset credentials so a stored token
// can never outlive its single use.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
}

func (u *User) ClearOTP() {
	u.OTPHash = ""
	u.OTPExpires = nil
}

// CanChangeRole reports whether actor may move target from its current role
// to the requested one. Only admins may change roles at all, and the admin
// role can only be granted or revoked by another admin acting on a
// non-admin pair explicitly listed here.
func CanChangeRole(actor UserRole, from, to UserRole) bool {
	if actor != RoleAdmin {
		return false
	}
	if from == to {
		return true
	}
	allowed := map[UserRole][]UserRole{
		RoleCustomer: {RoleSeller, RoleAdmin},
		RoleSeller:   {RoleCustomer, RoleAdmin},
		RoleAdmin:    {RoleCustomer, RoleSeller},
	}
	for _, r := range allowed[from] {
		if r == to {
			return true
		}
	}
	return false
}
