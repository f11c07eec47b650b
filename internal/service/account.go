package service

import (
	"context"
	"errors"
	"fmt"

	"second-chance/internal/database"
	"second-chance/internal/logging"
	"second-chance/internal/model"
	"second-chance/internal/store"

	"github.com/google/uuid"
)

var (
	getAccountByEmail = store.GetAccountByEmail
	createAccount     = store.CreateAccount
	updateAccount     = store.UpdateAccount
	newAccountID      = uuid.NewString
)

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

type TokenSigner interface {
	Issue(accountID string) (string, error)
}

// RegisterInput lists every field a caller may set on a new account.
// Anything else in the request body is dropped before it reaches here.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type RegisterResult struct {
	Token string
	Email string
}

type LoginResult struct {
	Token string
	Name  string
	Email string
}

type AccountService struct {
	db     database.DB
	hasher PasswordHasher
	tokens TokenSigner
	log    logging.Logger
}

func NewAccountService(db database.DB, hasher PasswordHasher, tokens TokenSigner, log logging.Logger) *AccountService {
	if log == nil {
		log = logging.Discard()
	}
	return &AccountService{db: db, hasher: hasher, tokens: tokens, log: log.With("component", "accounts")}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	_, err := getAccountByEmail(ctx, s.db, in.Email)
	switch {
	case err == nil:
		return nil, model.ErrDuplicateEmail
	case !errors.Is(err, model.ErrNotFound):
		return nil, persistence("register", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	acc := &model.Account{
		ID:           newAccountID(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	}
	if err := createAccount(ctx, s.db, acc); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil, model.ErrDuplicateEmail
		}
		return nil, persistence("register", err)
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.Info(ctx, "account registered", "account_id", acc.ID)
	return &RegisterResult{Token: token, Email: acc.Email}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acc, err := getAccountByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, persistence("login", err)
	}

	ok, err := s.hasher.Verify(ctx, password, acc.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash unusable", "account_id", acc.ID, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{Token: token, Name: acc.Name, Email: acc.Email}, nil
}

// Update changes the display name of the account with email and returns a
// fresh token.
func (s *AccountService) Update(ctx context.Context, email, name string) (string, error) {
	acc, err := getAccountByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.ErrNotFound
		}
		return "", persistence("update account", err)
	}

	acc.Name = name
	acc.UpdatedAt = timeNow().UTC()
	if err := updateAccount(ctx, s.db, acc); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.ErrNotFound
		}
		return "", persistence("update account", err)
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return "", fmt.Errorf("update account: %w", err)
	}
	s.log.Info(ctx, "account updated", "account_id", acc.ID)
	return token, nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrPersistence, err)
}
