package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

const userColumns = `id, name, email, role, faculty, active, created_at`

// UserRepository reads users for display joins and authentication.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns all users without credentials.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	query := "SELECT " + userColumns + " FROM users ORDER BY id"
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

// FindByEmail returns a user including its password hash. The error wraps
// sql.ErrNoRows when nothing matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := "SELECT " + userColumns + ", COALESCE(password_hash, '') AS password_hash FROM users WHERE LOWER(email) = LOWER($1)"
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}
