package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/apperr"
)

// RelationshipStore owns the user/link relation. Every link row has a creator,
// and every creator lists the link in user_links; the two sides are always
// written together here and nowhere else.
//
// Errors returned are *apperr.Error values: NotFound for a missing user or
// link, Conflict wrapping ErrShortCodeTaken for a short code collision, and
// Internal for everything else.
type RelationshipStore struct {
	db *sqlx.DB
	tx *txRunner
}

func NewRelationshipStore(db *sqlx.DB, log *zap.Logger, cfg TxConfig) *RelationshipStore {
	return &RelationshipStore{
		db: db,
		tx: &txRunner{db: db, cfg: cfg.withDefaults(), log: log.Named("tx")},
	}
}

func (s *RelationshipStore) q(query string) string { return s.db.Rebind(query) }

// ListLinksForUser returns the links owned by userID in the order they were
// added. A user with no links gets an empty slice; an unknown user is NotFound.
func (s *RelationshipStore) ListLinksForUser(ctx context.Context, userID string) ([]*Link, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM users WHERE id = ?`), userID); err != nil {
		return nil, internalErr("list links", err)
	}
	if n == 0 {
		return nil, notFound("user for the provided id")
	}

	links := []*Link{}
	err := s.db.SelectContext(ctx, &links, s.q(`
		SELECT l.* FROM links l
		INNER JOIN user_links ul ON ul.link_id = l.id
		WHERE ul.user_id = ?
		ORDER BY ul.position ASC
	`), userID)
	if err != nil {
		return nil, internalErr("list links", err)
	}
	return links, nil
}

// CreateLinkForUser inserts a link created by ownerID and appends it to the
// owner's link set in one transaction.
func (s *RelationshipStore) CreateLinkForUser(ctx context.Context, ownerID string, f NewLink) (*Link, error) {
	link := &Link{
		ID:          uuid.New().String(),
		Title:       f.Title,
		Description: f.Description,
		OriginalURL: f.OriginalURL,
		ShortCode:   f.ShortCode,
		Category:    f.Category,
		CreatorID:   ownerID,
	}

	err := s.tx.withTx(ctx, "create_link", func(ctx context.Context, tx *sqlx.Tx) error {
		now := time.Now().UTC()
		link.CreatedAt, link.UpdatedAt = now, now

		if err := lockOwner(ctx, tx, ownerID, now); err != nil {
			return err
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO links (id, title, description, original_url, short_code, category, creator_id, created_at, updated_at)
			VALUES (:id, :title, :description, :original_url, :short_code, :category, :creator_id, :created_at, :updated_at)
		`, link)
		if err != nil {
			if isUniqueConstraintError(err) {
				return apperr.Wrap(apperr.Conflict, ErrShortCodeTaken, "short code already in use")
			}
			return err
		}

		return appendOwned(ctx, tx, ownerID, link.ID)
	})
	if err != nil {
		return nil, internalErr("create link", err)
	}
	return link, nil
}

// UpdateLink changes a link's title and description. Only the links row is
// touched, so no transaction is needed.
func (s *RelationshipStore) UpdateLink(ctx context.Context, linkID string, u LinkUpdate) (*Link, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE links SET title = ?, description = ?, updated_at = ? WHERE id = ?
	`), u.Title, u.Description, time.Now().UTC(), linkID)
	if err != nil {
		return nil, internalErr("update link", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, internalErr("update link", err)
	}
	if n == 0 {
		return nil, notFound("link for this id")
	}
	return s.GetLink(ctx, linkID)
}

// DeleteLink removes the owner's reference and the link in one transaction.
// When two deletes race, the one that commits second sees the link gone and
// gets NotFound.
func (s *RelationshipStore) DeleteLink(ctx context.Context, linkID string) error {
	err := s.tx.withTx(ctx, "delete_link", func(ctx context.Context, tx *sqlx.Tx) error {
		creatorID, err := creatorOf(ctx, tx, linkID)
		if err != nil {
			return err
		}

		removed, err := removeOwned(ctx, tx, creatorID, linkID)
		if err != nil {
			return err
		}
		if !removed {
			// Either a concurrent delete committed after our read, or the
			// relation is broken. Re-read to tell which.
			exists, err := linkExists(ctx, tx, linkID)
			if err != nil {
				return err
			}
			if !exists {
				return notFound("link for this id")
			}
			return errDanglingReference.New("user %s does not reference link %s", creatorID, linkID)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM links WHERE id = ?`), linkID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound("link for this id")
		}
		return nil
	})
	if err != nil {
		return internalErr("delete link", err)
	}
	return nil
}

// OwnerOf returns the creator of linkID, or NotFound.
func (s *RelationshipStore) OwnerOf(ctx context.Context, linkID string) (string, error) {
	creatorID, err := creatorOf(ctx, s.db, linkID)
	if err != nil {
		return "", internalErr("get link owner", err)
	}
	return creatorID, nil
}

// GetLink returns the link matching id, or NotFound.
func (s *RelationshipStore) GetLink(ctx context.Context, id string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("link for this id")
	}
	if err != nil {
		return nil, internalErr("get link", err)
	}
	return &l, nil
}

// GetLinkByShortCode returns the link with the given short code, or NotFound.
func (s *RelationshipStore) GetLinkByShortCode(ctx context.Context, code string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE short_code = ?`), code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("link for this short code")
	}
	if err != nil {
		return nil, internalErr("get link by short code", err)
	}
	return &l, nil
}

// OwnedLinkIDs returns the owner-side view of the relation: the ids in
// userID's link set, in order.
func (s *RelationshipStore) OwnedLinkIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, s.q(`
		SELECT link_id FROM user_links WHERE user_id = ? ORDER BY position ASC
	`), userID)
	if err != nil {
		return nil, internalErr("list owned link ids", err)
	}
	return ids, nil
}

// CountLinks returns the number of links.
func (s *RelationshipStore) CountLinks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM links`); err != nil {
		return 0, internalErr("count links", err)
	}
	return n, nil
}
