package browse

import (
	"context"
	"errors"
	"fmt"

	"residence/internal/localstore"
)

// User is a signed in visitor
type User struct {
	ID    string
	Email string
}

// Auth is the managed auth provider
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	Register(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
}

// AuthError carries a provider error code such as "auth/wrong-password"
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *AuthError) Unwrap() error { return e.Err }

var authMessages = map[string]string{
	"auth/invalid-email":          "Please enter a valid email address.",
	"auth/user-disabled":          "This account has been disabled.",
	"auth/user-not-found":         "No account found with this email.",
	"auth/wrong-password":         "Incorrect password. Please try again.",
	"auth/invalid-credential":     "Invalid email or password.",
	"auth/email-already-in-use":   "An account with this email already exists.",
	"auth/weak-password":          "Password should be at least 6 characters.",
	"auth/too-many-requests":      "Too many attempts. Please try again later.",
	"auth/network-request-failed": "Network error. Check your connection and try again.",
}

const msgAuthFailed = "Authentication failed. Please try again."

// AuthMessage maps a provider error to a message fit for the user
func AuthMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		if msg, ok := authMessages[authErr.Code]; ok {
			return msg
		}
	}
	return msgAuthFailed
}

// SignIn signs the visitor in and loads their favorites
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	return s.authenticate(ctx, "browse.SignIn", email, password, func(a Auth) (*User, error) {
		return a.SignIn(ctx, email, password)
	})
}

// Register creates an account and signs it in
func (s *Session) Register(ctx context.Context, email, password string) (*User, error) {
	return s.authenticate(ctx, "browse.Register", email, password, func(a Auth) (*User, error) {
		return a.Register(ctx, email, password)
	})
}

func (s *Session) authenticate(ctx context.Context, op, email, password string, call func(Auth) (*User, error)) (*User, error) {
	if s.auth == nil {
		s.log.ErrorContext(ctx, "auth provider missing", "op", op)
		s.notify(NoticeError, msgAuthFailed)
		return nil, ErrNoAuthProvider
	}
	if email == "" || password == "" {
		s.notify(NoticeError, "Please enter your email and password.")
		return nil, fmt.Errorf("%s: %w", op, &AuthError{Code: "auth/missing-credentials"})
	}

	user, err := call(s.auth)
	if err != nil {
		s.log.WarnContext(ctx, "authentication failed", "op", op, "error", err)
		s.notify(NoticeError, AuthMessage(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.OnAuthStateChanged(ctx, user)
	s.notify(NoticeSuccess, "Welcome, "+user.Email+"!")
	return user, nil
}

// SignOut signs the visitor out and forgets their favorites locally
func (s *Session) SignOut(ctx context.Context) error {
	const op = "browse.SignOut"

	if s.auth == nil {
		s.log.ErrorContext(ctx, "auth provider missing", "op", op)
		return ErrNoAuthProvider
	}
	if err := s.auth.SignOut(ctx); err != nil {
		s.log.WarnContext(ctx, "sign out failed", "op", op, "error", err)
		s.notify(NoticeError, AuthMessage(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.OnAuthStateChanged(ctx, nil)
	s.notify(NoticeInfo, "Signed out.")
	return nil
}

// OnAuthStateChanged observes the provider session. A signed in user's remote
// favorites replace the local cache; signing out clears it.
func (s *Session) OnAuthStateChanged(ctx context.Context, user *User) {
	const op = "browse.OnAuthStateChanged"

	s.favMu.Lock()
	defer s.favMu.Unlock()

	if user == nil {
		s.mu.Lock()
		s.user = nil
		s.favorites = []string{}
		showFavorites := s.filters.ShowFavorites
		view := s.listView()
		s.mu.Unlock()

		if s.local != nil {
			if err := s.local.Delete(localstore.KeyFavorites); err != nil {
				s.log.WarnContext(ctx, "cannot clear local favorites", "op", op, "error", err)
			}
		}
		s.showFavoritesChanged(ctx, op, showFavorites, view)
		return
	}

	u := *user
	s.mu.Lock()
	switched := s.user != nil && s.user.ID != u.ID
	s.user = &u
	if switched {
		// the previous account's favorites must not leak into this one
		s.favorites = []string{}
	}
	s.mu.Unlock()

	remote, err := s.store.GetFavorites(ctx, u.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load favorites", "op", op, "user_id", u.ID, "error", err)
		s.notify(NoticeError, "Could not load your favorites.")
		if switched {
			s.mu.Lock()
			showFavorites := s.filters.ShowFavorites
			view := s.listView()
			s.mu.Unlock()
			s.showFavoritesChanged(ctx, op, showFavorites, view)
		}
		return
	}
	remote = compactIDs(remote)
	if len(remote) > MaxFavorites {
		remote = remote[:MaxFavorites]
	}

	s.mu.Lock()
	if s.user == nil || s.user.ID != u.ID {
		s.mu.Unlock()
		return
	}
	s.favorites = remote
	showFavorites := s.filters.ShowFavorites
	view := s.listView()
	s.mu.Unlock()

	s.saveLocal(localstore.KeyFavorites, remote)
	s.showFavoritesChanged(ctx, op, showFavorites, view)
}

// showFavoritesChanged redraws after the favorites set was replaced. The
// favorites view is refetched so it only lists the new set.
func (s *Session) showFavoritesChanged(ctx context.Context, op string, showFavorites bool, view ListView) {
	if !showFavorites {
		s.renderList(view)
		return
	}
	if _, err := s.fetch(ctx, true); err != nil && !errors.Is(err, ErrStaleFetch) {
		s.log.WarnContext(ctx, "favorites view refetch failed", "op", op, "error", err)
	}
}
