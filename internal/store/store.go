package store

import (
	"errors"
	"time"

	"github.com/zeebo/errs"

	"github.com/joestump/joe-bookmarks/internal/apperr"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user with the same email already exists.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrShortCodeTaken is returned when a generated short code collides with
	// an existing link.
	ErrShortCodeTaken = errors.New("short code is already in use")

	// Error wraps storage failures that have no more specific meaning.
	Error = errs.Class("store")
)

// Link is a row in the links table.
type Link struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	OriginalURL string    `db:"original_url"`
	ShortCode   string    `db:"short_code"`
	Category    string    `db:"category"`
	CreatorID   string    `db:"creator_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// NewLink holds the caller-supplied fields of a link being created.
type NewLink struct {
	Title       string
	Description string
	OriginalURL string
	ShortCode   string
	Category    string
}

// LinkUpdate holds the fields that may change after creation.
type LinkUpdate struct {
	Title       string
	Description string
}

func notFound(what string) error {
	return apperr.Wrap(apperr.NotFound, ErrNotFound, "could not find "+what)
}

// internalErr converts err into an Internal *apperr.Error unless it already
// carries a kind.
func internalErr(op string, err error) error {
	if hasKind(err) {
		return err
	}
	return apperr.Internalf(Error.Wrap(err), "%s failed", op)
}
