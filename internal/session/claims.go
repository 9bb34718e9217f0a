package session

import (
	"errors"
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/bidhub/console-go/internal/domain/user"
)

// accessTokenClaims is the identity payload the remote API embeds in the
// access token it issues at login.
type accessTokenClaims struct {
	Name  string      `json:"name"`
	Roles []user.Role `json:"roles"`
	jwtlib.RegisteredClaims
}

// IdentityFromAccessToken decodes the identity attributes (subject id,
// display name, granted roles) from a freshly issued access token. The token
// is not signature-verified: the client just received it over the
// authenticated login exchange and only mirrors what the server asserted.
func IdentityFromAccessToken(accessToken string) (user.User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return user.User{}, errors.New("access token is empty")
	}

	var claims accessTokenClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return user.User{}, fmt.Errorf("decode access token: %w", err)
	}

	return user.User{
		ID:       claims.Subject,
		Username: claims.Name,
		Roles:    claims.Roles,
	}, nil
}
