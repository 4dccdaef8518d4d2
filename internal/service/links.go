// Package service holds the operations behind the HTTP API. Services return
// *apperr.Error values and never write responses.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/apperr"
	"github.com/joestump/joe-bookmarks/internal/links"
	"github.com/joestump/joe-bookmarks/internal/metrics"
	"github.com/joestump/joe-bookmarks/internal/ownership"
	"github.com/joestump/joe-bookmarks/internal/store"
)

// maxShortCodeAttempts bounds how many short codes CreateLink draws before
// giving up on collisions.
const maxShortCodeAttempts = 3

type linkStore interface {
	ListLinksForUser(ctx context.Context, userID string) ([]*store.Link, error)
	CreateLinkForUser(ctx context.Context, ownerID string, f store.NewLink) (*store.Link, error)
	UpdateLink(ctx context.Context, linkID string, u store.LinkUpdate) (*store.Link, error)
	DeleteLink(ctx context.Context, linkID string) error
	OwnerOf(ctx context.Context, linkID string) (string, error)
	GetLinkByShortCode(ctx context.Context, code string) (*store.Link, error)
}

// LinkFields are the caller-supplied fields of a new link. Input validation
// happens before the service is called.
type LinkFields struct {
	Title       string
	Description string
	OriginalURL string
	Category    string
}

type LinkService struct {
	store   linkStore
	log     *zap.Logger
	newCode func() (string, error)
}

func NewLinkService(s linkStore, log *zap.Logger) *LinkService {
	return &LinkService{
		store: s,
		log:   log.Named("links"),
		newCode: func() (string, error) {
			return links.GenerateShortCode(links.ShortCodeLength)
		},
	}
}

// ListLinksForUser returns userID's links in insertion order. No ownership
// check applies; any authenticated caller may list any user's links.
func (s *LinkService) ListLinksForUser(ctx context.Context, userID string) ([]*store.Link, error) {
	out, err := s.store.ListLinksForUser(ctx, userID)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

// CreateLink creates a link owned by requesterID under a freshly generated
// short code, drawing a new code when the store reports a collision.
func (s *LinkService) CreateLink(ctx context.Context, requesterID string, f LinkFields) (*store.Link, error) {
	var err error
	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		var code string
		code, err = s.newCode()
		if err != nil {
			return nil, s.fail("create", apperr.Internalf(err, "could not create link"))
		}

		var l *store.Link
		l, err = s.store.CreateLinkForUser(ctx, requesterID, store.NewLink{
			Title:       f.Title,
			Description: f.Description,
			OriginalURL: f.OriginalURL,
			ShortCode:   code,
			Category:    f.Category,
		})
		if err == nil {
			s.succeed("create")
			return l, nil
		}
		if !errors.Is(err, store.ErrShortCodeTaken) {
			break
		}
		s.log.Debug("short code collision", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	if errors.Is(err, store.ErrShortCodeTaken) {
		err = apperr.Internalf(err, "could not allocate a short code")
	}
	return nil, s.fail("create", err)
}

// UpdateLink changes title and description of linkID. The link must exist
// and be owned by requesterID, checked in that order.
func (s *LinkService) UpdateLink(ctx context.Context, requesterID, linkID string, u store.LinkUpdate) (*store.Link, error) {
	if err := s.authorize(ctx, requesterID, linkID); err != nil {
		return nil, s.fail("update", err)
	}
	l, err := s.store.UpdateLink(ctx, linkID, u)
	if err != nil {
		return nil, s.fail("update", err)
	}
	s.succeed("update")
	return l, nil
}

// DeleteLink removes linkID and its owner reference. The link must exist and
// be owned by requesterID.
func (s *LinkService) DeleteLink(ctx context.Context, requesterID, linkID string) error {
	if err := s.authorize(ctx, requesterID, linkID); err != nil {
		return s.fail("delete", err)
	}
	if err := s.store.DeleteLink(ctx, linkID); err != nil {
		return s.fail("delete", err)
	}
	s.succeed("delete")
	return nil
}

// ResolveShortCode returns the original URL behind code.
func (s *LinkService) ResolveShortCode(ctx context.Context, code string) (string, error) {
	if err := links.ValidateShortCode(code); err != nil {
		return "", apperr.NotFoundf("could not find link for this short code")
	}
	l, err := s.store.GetLinkByShortCode(ctx, code)
	if err != nil {
		return "", s.fail("resolve", err)
	}
	return l.OriginalURL, nil
}

func (s *LinkService) authorize(ctx context.Context, requesterID, linkID string) error {
	ownerID, err := s.store.OwnerOf(ctx, linkID)
	if err != nil {
		return err
	}
	return ownership.Verify(ownerID, requesterID)
}

func (s *LinkService) succeed(op string) {
	metrics.LinkOperationsTotal.WithLabelValues(op, "ok").Inc()
}

// fail counts err under its kind and logs it when it is Internal.
func (s *LinkService) fail(op string, err error) error {
	kind := apperr.KindOf(err)
	metrics.LinkOperationsTotal.WithLabelValues(op, kind.String()).Inc()
	if kind == apperr.Internal {
		s.log.Error("link operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
