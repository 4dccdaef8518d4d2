package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/joe-bookmarks/internal/apperr"
	"github.com/joestump/joe-bookmarks/internal/store"
)

const (
	// DefaultPasswordCost is the bcrypt cost used for stored credentials.
	DefaultPasswordCost = bcrypt.DefaultCost
	// TestPasswordCost keeps hashing fast in tests.
	TestPasswordCost = bcrypt.MinCost
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

type userStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*store.User, error)
	GetByEmail(ctx context.Context, email string) (*store.User, error)
}

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is what a successful signup or login hands back to the client.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Accounts registers users and checks their credentials.
type Accounts struct {
	users        userStore
	tokens       TokenIssuer
	passwordCost int
	log          *zap.Logger
}

func NewAccounts(users userStore, tokens TokenIssuer, passwordCost int, log *zap.Logger) *Accounts {
	if passwordCost == 0 {
		passwordCost = DefaultPasswordCost
	}
	return &Accounts{users: users, tokens: tokens, passwordCost: passwordCost, log: log.Named("accounts")}
}

// Signup creates a user with a bcrypt credential and returns a session for
// it. An email already in use is a Conflict; a password bcrypt cannot hash
// is a Validation error.
func (a *Accounts) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validationf("password must be at most %d bytes", MaxPasswordBytes)
	}
	if err != nil {
		return nil, a.internal("signup", apperr.Internalf(err, "signing up failed, please try again later"))
	}

	u, err := a.users.Create(ctx, strings.TrimSpace(name), normalizeEmail(email), string(hash))
	if err != nil {
		return nil, a.internal("signup", err)
	}
	return a.session(u)
}

// Login checks email and password. Unknown email and wrong password are the
// same Unauthorized error.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, a.internal("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalidCredentials()
		}
		return nil, a.internal("login", apperr.Internalf(err, "logging in failed, please try again later"))
	}
	return a.session(u)
}

func (a *Accounts) session(u *store.User) (*Session, error) {
	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return nil, a.internal("issue token", apperr.Internalf(err, "could not issue token"))
	}
	return &Session{UserID: u.ID, Email: u.Email, Token: token}, nil
}

func (a *Accounts) internal(op string, err error) error {
	if apperr.KindOf(err) == apperr.Internal {
		a.log.Error("account operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

func invalidCredentials() error {
	return apperr.Unauthorizedf("invalid credentials, could not log you in")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
