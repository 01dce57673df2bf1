package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mifmarket/directory-api/internal/identity"
)

// Validation errors rejected locally, before any network call
var (
	ErrCharterNotAccepted = errors.New("the producer charter must be accepted")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrAlreadyRegistered  = errors.New("an account with this email is already registered")
)

const minPasswordLength = 6

// IdentityProvider is the subset of the identity client used by registration
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	AdminDeleteUser(ctx context.Context, userID uuid.UUID) error
}

// RoleWriter inserts the producer role row inside the registration transaction
type RoleWriter interface {
	CreateProducerRoleTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, email string) error
}

// RegistrationInput carries the self-registration form fields
type RegistrationInput struct {
	CompanyName     string   `json:"company_name"`
	ContactName     string   `json:"contact_name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	PostalCode      string   `json:"postal_code"`
	City            string   `json:"city"`
	Region          string   `json:"region"`
	Categories      []string `json:"categories"`
	Description     string   `json:"description"`
	Website         string   `json:"website"`
	CharterAccepted bool     `json:"charter_accepted"`
}

// Validate applies the local pre-flight checks. A failed validation means
// registration never issues a network call.
func (in *RegistrationInput) Validate() error {
	if !in.CharterAccepted {
		return ErrCharterNotAccepted
	}
	if in.Password != in.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// RegistrationService creates producer accounts: one identity-provider
// sign-up, then the role row and the producer row in a single database
// transaction, then an immediate sign-out so registration never leaves the
// caller authenticated.
type RegistrationService struct {
	store *Store
	roles RoleWriter
	idp   IdentityProvider
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(store *Store, roles RoleWriter, idp IdentityProvider) *RegistrationService {
	return &RegistrationService{store: store, roles: roles, idp: idp}
}

// Register runs the full registration flow and returns the created producer
func (s *RegistrationService) Register(ctx context.Context, in *RegistrationInput) (*Producer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	session, err := s.idp.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrUserAlreadyExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	userID := session.User.ID

	producer, err := s.insertProducer(ctx, in, userID)
	if err != nil {
		// The identity account exists but the local rows failed; delete the
		// orphaned account so a retry starts clean.
		if delErr := s.idp.AdminDeleteUser(ctx, userID); delErr != nil {
			log.Printf("[register] failed to compensate orphaned identity %s: %v", userID, delErr)
		}
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	// Sign-up opened a session; close it so the browser is not left
	// authenticated after registering.
	if err := s.idp.SignOut(ctx, session.AccessToken); err != nil {
		log.Printf("[register] sign-out after registration failed: %v", err)
	}

	return producer, nil
}

func (s *RegistrationService) insertProducer(ctx context.Context, in *RegistrationInput, userID uuid.UUID) (*Producer, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting registration transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.roles.CreateProducerRoleTx(ctx, tx, userID, in.Email); err != nil {
		return nil, fmt.Errorf("creating producer role: %w", err)
	}

	producer := &Producer{
		UserID:      &userID,
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		PostalCode:  in.PostalCode,
		City:        in.City,
		Region:      in.Region,
		Categories:  pq.StringArray(in.Categories),
		Description: in.Description,
		Website:     in.Website,
		IsVisible:   true,
	}
	if err := s.store.CreateTx(ctx, tx, producer); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}
	return producer, nil
}
