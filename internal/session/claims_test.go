package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/session"
	"github.com/bidhub/console-go/internal/testutil"
)

func TestIdentityFromAccessToken(t *testing.T) {
	roles := []user.Role{{ID: 1, Name: "Admin"}, {ID: 2, Name: "User"}}
	token := testutil.MintAccessToken(t, "7", "carol", roles)

	identity, err := session.IdentityFromAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "7", identity.ID)
	assert.Equal(t, "carol", identity.Username)
	assert.Equal(t, roles, identity.Roles)
}

func TestIdentityFromAccessTokenErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "whitespace", token: "   "},
		{name: "not a jwt", token: "header.payload"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := session.IdentityFromAccessToken(tc.token)
			assert.Error(t, err)
		})
	}
}
