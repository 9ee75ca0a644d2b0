package util

import (
	"testing"
	"time"

	"cptncf_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "Ana Reyes",
		Email: "ana@example.edu",
		Role:  model.Faculty,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Faculty, claims.Role)
	assert.Equal(t, "ana@example.edu", claims.Email)
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "ana@example.edu", Role: model.Student}
	token, err := GenerateJWT(user, "right-secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "ana@example.edu", Role: model.Student}
	token, err := GenerateJWT(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "test-secret")
	assert.Error(t, err)
}

func TestParsePositiveInt(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"25", 10, 25},
		{"", 10, 10},
		{"0", 10, 10},
		{"-3", 10, 10},
		{"abc", 10, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParsePositiveInt(tc.in, tc.def), "input %q", tc.in)
	}
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(7), MustParseUint("7"))
	assert.Equal(t, uint(0), MustParseUint("not-a-number"))
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("lecture.PDF", AllowedDocumentExtensions))
	assert.True(t, HasAllowedExtension("session.mp4", AllowedVideoExtensions))
	assert.False(t, HasAllowedExtension("notes.txt", AllowedDocumentExtensions))
	assert.False(t, HasAllowedExtension("archive", AllowedVideoExtensions))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("video/mp4"))
	assert.True(t, IsVideo("application/x-mpegURL"))
	assert.False(t, IsVideo("application/pdf"))
}
