package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/idx"
)

// NewUser is the input to UserService.CreateUser.
type NewUser struct {
	Email    string `validate:"required,email,max=254"`
	Name     string `validate:"max=200"`
	Age      int    `validate:"gte=0,lte=150"`
	Password string `validate:"required,min=8,max=1024"`
}

type UserService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Validate *validator.Validate
}

// CreateUser hashes the password and inserts the account. Returns
// ErrInvalidUser wrapping the validation failure, or store.ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator().Struct(in); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service: hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Name:         in.Name,
		Age:          in.Age,
		PasswordHash: hash,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SetPassword replaces the password of the account with the given email. The
// lookup and the update share one transaction.
func (s *UserService) SetPassword(ctx context.Context, email, password string) error {
	if err := s.validator().Var(password, "required,min=8,max=1024"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("service: hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		return tx.Users().UpdatePasswordHash(ctx, user.ID, hash)
	})
}

// Empty reports whether no account has been created yet.
func (s *UserService) Empty(ctx context.Context) (bool, error) {
	return s.Store.Users().IsEmpty(ctx)
}

func (s *UserService) validator() *validator.Validate {
	if s.Validate != nil {
		return s.Validate
	}
	return defaultValidate
}

var defaultValidate = validator.New(validator.WithRequiredStructEnabled())
