package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zeebo/errs"
)

// The helpers below write the owner side of the user/link relation
// (user_links). They take a transaction and are unexported so that only
// RelationshipStore, which pairs each call with the matching links write,
// can change the relation.

// lockOwner bumps the owner's updated_at. It confirms the user exists and
// takes the row lock that serializes concurrent appends to the same owner.
func lockOwner(ctx context.Context, tx *sqlx.Tx, userID string, now time.Time) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET updated_at = ? WHERE id = ?`), now, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("user for the provided id")
	}
	return nil
}

// appendOwned adds linkID to the end of userID's ordered link set.
func appendOwned(ctx context.Context, tx *sqlx.Tx, userID, linkID string) error {
	var next int
	err := tx.GetContext(ctx, &next, tx.Rebind(`
		SELECT COALESCE(MAX(position), 0) + 1 FROM user_links WHERE user_id = ?
	`), userID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO user_links (user_id, link_id, position) VALUES (?, ?, ?)
	`), userID, linkID, next)
	return err
}

// removeOwned drops linkID from userID's link set. It returns false when
// there was nothing to remove.
func removeOwned(ctx context.Context, tx *sqlx.Tx, userID, linkID string) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM user_links WHERE user_id = ? AND link_id = ?
	`), userID, linkID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// creatorOf reads the recorded creator of linkID.
func creatorOf(ctx context.Context, q queryer, linkID string) (string, error) {
	var creatorID string
	err := sqlx.GetContext(ctx, q, &creatorID, q.Rebind(`SELECT creator_id FROM links WHERE id = ?`), linkID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("link for this id")
	}
	return creatorID, err
}

// linkExists reports whether a links row with id is visible to tx.
func linkExists(ctx context.Context, tx *sqlx.Tx, linkID string) (bool, error) {
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM links WHERE id = ?`), linkID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// errDanglingReference is returned when a link exists but its owner holds no
// reference to it. Committed data never looks like this; seeing it aborts
// the transaction.
var errDanglingReference = errs.Class("dangling owner reference")
