// Package ownership gates link mutations on the recorded creator.
package ownership

import "github.com/joestump/joe-bookmarks/internal/apperr"

// Verify returns nil when requesterID is the recorded owner, and an
// Unauthorized *apperr.Error otherwise. It performs no I/O; the caller must
// have already resolved ownerID from an existing record.
func Verify(ownerID, requesterID string) error {
	if ownerID == "" || requesterID == "" || ownerID != requesterID {
		return apperr.Unauthorizedf("you are not allowed to modify this link")
	}
	return nil
}
