package store

import (
	"context"
	"errors"
	"fmt"

	"second-chance/internal/database"
	"second-chance/internal/model"

	"github.com/jackc/pgx/v5"
)

func GetAccountByEmail(ctx context.Context, db database.DB, email string) (*model.Account, error) {
	row := db.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	)
	a := &model.Account{}
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetAccountByEmail: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("GetAccountByEmail: %w", err)
	}
	return a, nil
}

// CreateAccount inserts a; the users_email_key constraint turns a lost
// register race into ErrDuplicateEmail.
func CreateAccount(ctx context.Context, db database.DB, a *model.Account) error {
	row := db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.Name,
	)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("CreateAccount: %w", model.ErrDuplicateEmail)
		}
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}

// UpdateAccount persists the mutable profile fields.
func UpdateAccount(ctx context.Context, db database.DB, a *model.Account) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET name = $1, updated_at = $2
		 WHERE id = $3`,
		a.Name,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateAccount: %w", model.ErrNotFound)
	}
	return nil
}
