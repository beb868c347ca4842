package database

import (
	"context"
	"errors"
	"fmt"

	"staygrow/errs"
	"staygrow/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Users are owned by the auth subsystem; this package only reads them,
// except CreateUser which seeds accounts for tests and local setups.

func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, role, avatar_url, created_at
		FROM %s
		WHERE id = $1
	`, tableUsers)

	user, err := scanUser(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (db *DB) CreateUser(ctx context.Context, name, email string, role models.Role) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, role, avatar_url, created_at
	`, tableUsers)

	user, err := scanUser(db.Pool.QueryRow(ctx, query, name, email, string(role)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
