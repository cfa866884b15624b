package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"colloq/internal/auth"
	"colloq/internal/models"
)

func CreateUser(ctx context.Context, database *sql.DB, id, name, role, apiKeyHash string) error {
	_, err := database.ExecContext(
		ctx,
		`INSERT INTO users (id, name, api_key, role, created) VALUES (?, ?, ?, ?, ?)`,
		id, name, apiKeyHash, role, nowRFC3339(),
	)
	return err
}

func GetUser(ctx context.Context, database *sql.DB, id string) (*models.User, error) {
	var u models.User
	err := database.QueryRowContext(ctx, `
SELECT id, name, role, created, last_active
FROM users
WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt, &u.LastActive)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByAPIKeyHash(ctx context.Context, database *sql.DB, apiKeyHash string) (*models.User, error) {
	var u models.User
	err := database.QueryRowContext(ctx, `
SELECT id, name, role, created, last_active
FROM users
WHERE api_key = ?`, apiKeyHash).
		Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt, &u.LastActive)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func DeleteUser(ctx context.Context, database *sql.DB, id string) error {
	res, err := database.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// EnsureBootstrapAdmin creates the first admin user if none exists and
// writes its freshly generated API key to keyOutPath. Returns the admin name
// when one was created.
func EnsureBootstrapAdmin(database *sql.DB, keyOutPath string) (string, error) {
	ctx := context.Background()
	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE role = 'admin'`).Scan(&count); err != nil {
		return "", fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	name := "admin"
	if err := CreateUser(ctx, database, id, name, "admin", auth.HashAPIKey(apiKey)); err != nil {
		return "", fmt.Errorf("create bootstrap admin: %w", err)
	}

	if err := os.WriteFile(keyOutPath, []byte(apiKey+"\n"), 0o600); err != nil {
		if delErr := DeleteUser(ctx, database, id); delErr != nil && !errors.Is(delErr, sql.ErrNoRows) {
			return "", fmt.Errorf("write key failed (%v), rollback failed (%v)", err, delErr)
		}
		return "", fmt.Errorf("write admin key file: %w", err)
	}

	return name, nil
}
