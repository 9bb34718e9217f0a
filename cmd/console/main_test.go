package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidhub/console-go/internal/api"
)

func TestValidateProjection(t *testing.T) {
	require.NoError(t, validateProjection(""))
	require.NoError(t, validateProjection("  "))
	require.NoError(t, validateProjection("[].name"))
	require.Error(t, validateProjection("[invalid"))
}

func TestPrintProjection(t *testing.T) {
	rows := []api.ListUser{
		{ID: 1, Name: "alice", Email: "alice@example.com"},
		{ID: 2, Name: "bob", Email: "bob@example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, printProjection(&buf, "[].name", rows))

	assert.JSONEq(t, `["alice", "bob"]`, buf.String())
}

func TestPrintProjectionSeesWireFieldNames(t *testing.T) {
	rows := []api.ListUser{{ID: 7, Name: "carol", BidCount: "12"}}

	var buf bytes.Buffer
	require.NoError(t, printProjection(&buf, "[0].bidCount", rows))

	assert.JSONEq(t, `"12"`, buf.String())
}

func TestParseListUsersFlags(t *testing.T) {
	opts, err := parseListUsersFlags([]string{
		"-page", "2", "-limit", "250", "-search", "bob", "-sort", "name DESC",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 250, opts.Limit)
	assert.Equal(t, "bob", opts.Search)
	assert.Equal(t, "name DESC", opts.Sort)

	defaults, err := parseListUsersFlags(nil)
	require.NoError(t, err)
	assert.Zero(t, defaults.Limit, "an omitted limit defers to the configured page size")
}

func TestCommandsHaveDescriptions(t *testing.T) {
	for name, c := range commands() {
		assert.Equal(t, name, c.name)
		assert.NotEmpty(t, c.description, "command %s", name)
		assert.NotNil(t, c.run, "command %s", name)
	}
}
