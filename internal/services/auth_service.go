package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/models"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginResult is what a successful credential exchange returns.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login verifies the email/password pair and issues a signed token
// carrying the principal claims. Wrong email and wrong password are
// indistinguishable to the caller.
func Login(db *gorm.DB, cfg *config.Config, email, password string) (*LoginResult, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.Unauthenticated("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, types.Unauthenticated("invalid credentials")
	}

	token, err := issueToken(cfg, &user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func issueToken(cfg *config.Config, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(cfg.TokenExpiry).Unix(),
	}
	if user.LinkedStudentID != nil {
		claims["linked_student_id"] = *user.LinkedStudentID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ResolvePrincipal parses and verifies a raw bearer token into a
// Principal. Anything short of a valid, unexpired HMAC token is an
// unauthenticated signal.
func ResolvePrincipal(cfg *config.Config, raw string) (policy.Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !tok.Valid {
		return policy.Principal{}, types.Unauthenticated("invalid or expired token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Principal{}, types.Unauthenticated("invalid token claims")
	}

	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return policy.Principal{}, types.Unauthenticated("invalid token claims")
	}
	roleStr, _ := claims["role"].(string)
	role := policy.ParseRole(roleStr)
	if role == policy.RoleUnknown {
		return policy.Principal{}, types.Unauthenticated("invalid token claims")
	}

	p := policy.Principal{ID: uint(id), Role: role}
	if linked, ok := claims["linked_student_id"].(float64); ok {
		p.LinkedStudentID = uint(linked)
	}
	return p, nil
}

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	Name              string `json:"name" validate:"required"`
	Role              string `json:"role" validate:"required,oneof=admin staff parent"`
	LinkedStudentUDID string `json:"linked_student_udid" validate:"required_if=Role parent"`
}

// CreateUser registers an account. Parent accounts must name an
// existing student by UDID; the link is resolved and stored at creation.
func CreateUser(db *gorm.DB, in CreateUserInput) (*models.User, error) {
	user := models.User{
		Email: in.Email,
		Name:  in.Name,
		Role:  in.Role,
	}

	if in.Role == models.RoleParent {
		var student models.Student
		if err := db.Where("udid = ?", in.LinkedStudentUDID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.Invalid("no student found with the supplied UDID")
			}
			return nil, err
		}
		user.LinkedStudentID = &student.ID
		user.LinkedStudentUDID = student.UDID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.Invalid("an account with this email already exists")
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all accounts, newest first, without hashes.
func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserInput is the account-update payload. Nil pointers leave the
// field untouched.
type UpdateUserInput struct {
	Email           *string `json:"email" validate:"omitempty,email"`
	Name            *string `json:"name"`
	Role            *string `json:"role" validate:"omitempty,oneof=admin staff parent"`
	LinkedStudentID *uint   `json:"linked_student_id"`
	Password        *string `json:"password" validate:"omitempty,min=8"`
}

// UpdateUser patches an account.
func UpdateUser(db *gorm.DB, id uint, in UpdateUserInput) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.LinkedStudentID != nil {
		updates["linked_student_id"] = *in.LinkedStudentID
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// DeleteUser removes an account. Version-log rows it authored stay; the
// history read substitutes a placeholder name.
func DeleteUser(db *gorm.DB, id uint) error {
	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("user not found")
	}
	return nil
}
