// Package credentials persists the access/refresh token pair issued at login.
// Stores have no network or session side effects; callers react to changes.
package credentials

import (
	"context"

	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned by Get when no token pair is persisted.
var ErrNoCredentials error = noCredentialsError{}

type noCredentialsError struct{}

func (noCredentialsError) Error() string { return "no credentials stored" }

// Pair is the persisted access/refresh token pair. Both tokens are opaque
// bearer credentials; they are written together on login and cleared together
// on logout or on an authorization failure.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether the pair holds no tokens.
func (p Pair) IsZero() bool { return p.AccessToken == "" && p.RefreshToken == "" }

// Token converts the pair to an oauth2 token. Persistent stores serialize
// this form, so the stored credentials stay readable by any client that
// consumes the standard token shape.
func (p Pair) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
}

// PairFromToken builds a Pair from an oauth2 token.
func PairFromToken(tok *oauth2.Token) Pair {
	if tok == nil {
		return Pair{}
	}
	return Pair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
}

// Store persists a credential pair across application runs.
// Implementations must be safe to use before any other component initializes
// and safe for concurrent use.
type Store interface {
	// Get returns the persisted pair, or ErrNoCredentials when absent.
	Get(ctx context.Context) (Pair, error)

	// Set persists both tokens, replacing any previous pair.
	Set(ctx context.Context, pair Pair) error

	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
