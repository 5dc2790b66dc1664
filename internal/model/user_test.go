package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole(" USER ")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	_, err = ParseRole("ADMN")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestPrincipalIsAdmin(t *testing.T) {
	var anon *Principal
	assert.False(t, anon.IsAdmin())
	assert.False(t, (&Principal{Role: RoleUser}).IsAdmin())
	assert.True(t, PrincipalOf(User{ID: 1, Role: RoleAdmin}).IsAdmin())
}

func TestCheckAccountFields(t *testing.T) {
	assert.NoError(t, CheckAccountFields("", ""))
	assert.NoError(t, CheckAccountFields(strings.Repeat("я", MaxUsernameLength), "a@example.com"))
	assert.EqualError(t, CheckAccountFields(strings.Repeat("a", MaxUsernameLength+1), ""),
		"username must be at most 64 characters")
	assert.EqualError(t, CheckAccountFields("bob", strings.Repeat("e", 250)+"@x.com"),
		"email must be at most 255 characters")
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}
