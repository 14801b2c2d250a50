// Package user provides the store operations for member accounts.
package user

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const (
	// DefaultLimit is the page size when none is given.
	DefaultLimit = 50
	// MaxLimit caps the page size.
	MaxLimit = 100

	whereEmail = "email = ?"
	whereRole  = "role = ?"
)

// Fields are the values of a new account.
type Fields struct {
	Email     string
	Password  string // plaintext, hashed before storing
	FirstName string
	LastName  string
	Role      rbac.Role // empty means rbac.DefaultRole
	ClassYear string
}

// Patch holds the changed profile values, nil fields stay untouched.
type Patch struct {
	FirstName *string
	LastName  *string
	ClassYear *string
	Role      *rbac.Role
}

// Bounds applies the List paging defaults: a non-positive limit becomes
// DefaultLimit, larger ones are capped at MaxLimit, a negative offset is 0.
func Bounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// List returns one page of accounts ordered by id and the total count.
func List(ctx context.Context, s *store.Store, limit, offset int) ([]models.User, int64, error) {
	limit, offset = Bounds(limit, offset)

	var (
		users []models.User
		total int64
	)

	err := s.Do(ctx, func(db *gorm.DB) error {
		if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}

		return db.Order("id").Limit(limit).Offset(offset).Find(&users).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// GetByID returns account id.
func GetByID(ctx context.Context, s *store.Store, id uint64) (*models.User, error) {
	var u models.User

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.First(&u, id).Error
	}); err != nil {
		return nil, err
	}

	return &u, nil
}

// GetByEmail returns the account registered with email.
func GetByEmail(ctx context.Context, s *store.Store, email string) (*models.User, error) {
	var u models.User

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Where(whereEmail, models.NormalizeEmail(email)).First(&u).Error
	}); err != nil {
		return nil, err
	}

	return &u, nil
}

// CountByRole returns the number of accounts holding role.
func CountByRole(ctx context.Context, s *store.Store, role rbac.Role) (int64, error) {
	var count int64

	err := s.Do(ctx, func(db *gorm.DB) error {
		return countByRole(db, role, &count)
	})

	return count, err
}

// Count returns the number of accounts.
func Count(ctx context.Context, s *store.Store) (int64, error) {
	var count int64

	err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Count(&count).Error
	})

	return count, err
}

func countByRole(db *gorm.DB, role rbac.Role, count *int64) error {
	return db.Model(&models.User{}).Where(whereRole, role.String()).Count(count).Error
}

// lockAdmins counts the administrators and holds their rows until tx ends, so
// concurrent demotions and deletions of administrators run one after another.
// SQLite has no row locks; its single writer serializes the transactions.
func lockAdmins(tx *gorm.DB, count *int64) error {
	var ids []uint64

	err := tx.Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(whereRole, rbac.RoleAdmin.String()).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}

	*count = int64(len(ids))

	return nil
}

// Create stores a new account. The email must not be registered yet.
func Create(ctx context.Context, s *store.Store, in Fields) (*models.User, error) {
	u := models.User{
		Email:     models.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		ClassYear: strings.TrimSpace(in.ClassYear),
	}

	if u.Role == "" {
		u.Role = rbac.DefaultRole
	}

	switch {
	case u.Email == "" || !strings.Contains(u.Email, "@"):
		return nil, rbac.NewValidationError("email", "a valid email address is required")
	case in.Password == "":
		return nil, rbac.NewValidationError("password", "is required")
	case !u.Role.Valid():
		return nil, rbac.NewValidationError("role", "invalid role")
	}

	u.Password = models.HashPassword(in.Password)

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where(whereEmail, u.Email).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return rbac.NewValidationError("email", "is already registered")
		}

		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Update changes the profile of account id. A role change that would leave no
// administrator is rejected with rbac.ErrLastAdmin.
func Update(ctx context.Context, s *store.Store, id uint64, patch Patch) (*models.User, error) {
	var u models.User

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		var admins int64

		// lock before reading the target so its role is current
		if patch.Role != nil {
			if err := lockAdmins(tx, &admins); err != nil {
				return err
			}
		}

		if err := tx.First(&u, id).Error; err != nil {
			return err
		}

		if patch.Role != nil {
			if err := rbac.CheckRoleChange(u.Role, *patch.Role, admins); err != nil {
				return err
			}

			u.Role = *patch.Role
		}

		if patch.FirstName != nil {
			u.FirstName = strings.TrimSpace(*patch.FirstName)
		}

		if patch.LastName != nil {
			u.LastName = strings.TrimSpace(*patch.LastName)
		}

		if patch.ClassYear != nil {
			u.ClassYear = strings.TrimSpace(*patch.ClassYear)
		}

		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// UpdateRole sets the role of account id.
func UpdateRole(ctx context.Context, s *store.Store, id uint64, role rbac.Role) (*models.User, error) {
	return Update(ctx, s, id, Patch{Role: &role})
}

// Delete removes account id on behalf of actor. Actors can not delete
// themselves and the last administrator stays.
func Delete(ctx context.Context, s *store.Store, actor *rbac.Identity, id uint64) error {
	if err := rbac.CheckNotSelf(actor, id); err != nil {
		return err
	}

	return s.Transaction(ctx, func(tx *gorm.DB) error {
		var admins int64
		if err := lockAdmins(tx, &admins); err != nil {
			return err
		}

		var target models.User
		if err := tx.Select("id", "role").First(&target, id).Error; err != nil {
			return err
		}

		if err := rbac.CheckUserDeletion(actor, target.ID, target.Role, admins); err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return rbac.ErrNotFound
		}

		return nil
	})
}
