package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/testutil"
)

func TestHasRole(t *testing.T) {
	u := user.User{Roles: []user.Role{
		{ID: 1, Name: "Admin"},
		{ID: 2, Name: "User"},
	}}

	assert.True(t, u.HasRole("Admin"))
	assert.True(t, u.HasRole("User"))
	assert.False(t, u.HasRole("Billing"))
	assert.False(t, u.HasRole("admin"), "role matching is case-sensitive")
}

func TestIsAdmin(t *testing.T) {
	admin := testutil.NewUser().AsAdmin().Build()
	member := testutil.NewUser().Build()

	assert.True(t, admin.IsAdmin())
	assert.False(t, member.IsAdmin())
	assert.False(t, user.User{}.IsAdmin())
}

func TestSubscriptionLabels(t *testing.T) {
	assert.Equal(t, "Trial", user.SubscriptionTrial.Label())
	assert.Equal(t, "Monthly", user.SubscriptionMonthly.Label())
	assert.Equal(t, "Annual", user.SubscriptionAnnual.Label())
	assert.Equal(t, "Unknown", user.SubscriptionType(99).Label())

	assert.Equal(t, "Inactive", user.SubscriptionInactive.Label())
	assert.Equal(t, "Active", user.SubscriptionActive.Label())
	assert.Equal(t, "Expired", user.SubscriptionExpired.Label())
	assert.Equal(t, "Non-Renewing", user.SubscriptionNonRenewing.Label())
}
