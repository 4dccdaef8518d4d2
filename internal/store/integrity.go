package store

import (
	"context"
	"fmt"
)

// Violation describes one place where the two sides of the user/link
// relation disagree.
type Violation struct {
	Kind   string `db:"kind"`
	LinkID string `db:"link_id"`
	UserID string `db:"user_id"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: link=%s user=%s", v.Kind, v.LinkID, v.UserID)
}

const (
	// ViolationUnreferenced is a link its creator does not list.
	ViolationUnreferenced = "unreferenced_link"
	// ViolationDangling is a user_links entry pointing at no link.
	ViolationDangling = "dangling_reference"
	// ViolationWrongOwner is a user_links entry held by someone other than the creator.
	ViolationWrongOwner = "owner_mismatch"
)

// CheckIntegrity cross-checks links against user_links and returns every
// violation found. An empty result means the relation is consistent.
func (s *RelationshipStore) CheckIntegrity(ctx context.Context) ([]Violation, error) {
	var out []Violation

	checks := []string{
		`SELECT '` + ViolationUnreferenced + `' AS kind, l.id AS link_id, l.creator_id AS user_id
		FROM links l
		LEFT JOIN user_links ul ON ul.link_id = l.id AND ul.user_id = l.creator_id
		WHERE ul.link_id IS NULL`,
		`SELECT '` + ViolationDangling + `' AS kind, ul.link_id AS link_id, ul.user_id AS user_id
		FROM user_links ul
		LEFT JOIN links l ON l.id = ul.link_id
		WHERE l.id IS NULL`,
		`SELECT '` + ViolationWrongOwner + `' AS kind, ul.link_id AS link_id, ul.user_id AS user_id
		FROM user_links ul
		INNER JOIN links l ON l.id = ul.link_id
		WHERE ul.user_id <> l.creator_id`,
	}
	for _, query := range checks {
		var found []Violation
		if err := s.db.SelectContext(ctx, &found, query); err != nil {
			return nil, internalErr("check integrity", err)
		}
		out = append(out, found...)
	}
	return out, nil
}
