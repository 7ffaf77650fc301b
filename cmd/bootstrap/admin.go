package bootstrap

import (
	"context"
	"fmt"

	"lab-booking/internal/domain/entity"
	"lab-booking/internal/repository"
	"lab-booking/pkg/password"
	"lab-booking/pkg/sanitize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EnsureAdmin creates an admin account unless one with the email already
// exists. The password must satisfy the signup policy.
func EnsureAdmin(ctx context.Context, db *gorm.DB, log *logrus.Logger, email, name, plain string) error {
	email = sanitize.Email(email)
	if email == "" {
		return fmt.Errorf("invalid admin email")
	}
	if err := password.Validate(plain); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository()
	existing, err := userRepo.FindByEmail(ctx, db, email)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Infof("Admin user %s already exists", email)
		return nil
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	admin := &entity.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     sanitize.String(name),
		Password: hashed,
		Role:     entity.RoleAdmin,
	}
	if err := userRepo.Create(ctx, db, admin); err != nil {
		return err
	}

	log.Infof("Created admin user %s", email)
	return nil
}
