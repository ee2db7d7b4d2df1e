// Package repository provides Bun-backed implementations of the
// userauth store contracts.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	userauth "github.com/arkead/go-userauth"
)

// Users is a UserStore over a Bun database. Any Bun dialect works; the
// tests run against in-memory sqlite.
type Users struct {
	db *bun.DB
}

var _ userauth.UserStore = (*Users)(nil)

// NewUsers wraps the database handle.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// CreateTable creates the users table if it does not exist. Intended
// for tests and bootstrap tooling; production schemas are owned by the
// host's migration pipeline.
func (r *Users) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*userauth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// GetByUsername satisfies the UserStore interface.
func (r *Users) GetByUsername(ctx context.Context, username string) (*userauth.User, error) {
	user := new(userauth.User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.selectError(err, "user lookup by username failed")
	}
	return user, nil
}

// GetByID satisfies the UserStore interface.
func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*userauth.User, error) {
	user := new(userauth.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.selectError(err, "user lookup by id failed")
	}
	return user, nil
}

// Save upserts the record by primary key. Unique-index violations on
// username or email surface as a conflict.
func (r *Users) Save(ctx context.Context, user *userauth.User) error {
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("email = EXCLUDED.email").
		Set("password_hash = EXCLUDED.password_hash").
		Set("roles = EXCLUDED.roles").
		Set("state = EXCLUDED.state").
		Set("must_change_password = EXCLUDED.must_change_password").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "username or email already taken").
				WithCode(goerrors.CodeConflict)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save user")
	}
	return nil
}

func (r *Users) selectError(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return userauth.ErrNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}

// isUniqueViolation matches sqlite ("UNIQUE constraint failed") and
// postgres ("duplicate key value violates unique constraint") driver
// messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique index")
}
