package api

import (
	"strings"

	"github.com/joestump/joe-bookmarks/internal/store"
)

// --- Link types ---

// CreateLinkRequest is the request body for POST /api/links.
type CreateLinkRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"min=5"`
	OriginalURL string `json:"originalUrl" validate:"min=5"`
	Category    string `json:"category" validate:"required"`
}

// UpdateLinkRequest is the request body for PATCH /api/links/{lid}. Only
// title and description can change.
type UpdateLinkRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"min=5"`
}

// LinkResponse is the JSON representation of a single link.
type LinkResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	Category    string `json:"category"`
	Creator     string `json:"creator"`
}

// LinkEnvelope wraps a single link as {"link": ...}.
type LinkEnvelope struct {
	Link *LinkResponse `json:"link"`
}

// LinkListResponse is the response for GET /api/links/user/{uid}.
type LinkListResponse struct {
	Links []*LinkResponse `json:"links"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func toLinkResponse(l *store.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		OriginalURL: l.OriginalURL,
		ShortURL:    shortURL(baseURL, l.ShortCode),
		Category:    l.Category,
		Creator:     l.CreatorID,
	}
}

func shortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/s/" + code
}

// --- User types ---

// SignupRequest is the request body for POST /api/users/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=72"`
}

// LoginRequest is the request body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// UserResponse is the JSON representation of the authenticated caller.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StatsResponse is the response for GET /api/stats.
type StatsResponse struct {
	Users int `json:"users"`
	Links int `json:"links"`
}
