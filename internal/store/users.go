package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-bookmarks/internal/apperr"
)

// User is a row in the users table. The set of links a user owns lives in
// user_links and is read through RelationshipStore.OwnedLinkIDs.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new user. passwordHash is stored as given.
// Returns a Conflict error wrapping ErrEmailTaken if the email is in use.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, name, email, passwordHash, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperr.Wrap(apperr.Conflict, ErrEmailTaken, "user exists already, please login instead")
		}
		return nil, internalErr("create user", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the user matching id, or a NotFound error.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user for the provided id")
	}
	if err != nil {
		return nil, internalErr("get user", err)
	}
	return &u, nil
}

// GetByEmail returns the user matching email, or a NotFound error.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user for the provided email")
	}
	if err != nil {
		return nil, internalErr("get user by email", err)
	}
	return &u, nil
}

// Count returns the number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, internalErr("count users", err)
	}
	return n, nil
}
