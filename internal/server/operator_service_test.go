package server

import (
	"testing"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorService_Authenticate(t *testing.T) {
	passwords := &config.PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	hash, err := passwords.HashPassword("s3cret-pass")
	require.NoError(t, err)

	svc, err := NewOperatorService([]config.Operator{
		{Login: "editor", PasswordHash: hash, UserID: 7, Capabilities: []string{config.CapEditPosts}},
	}, passwords)
	require.NoError(t, err)

	op, err := svc.Authenticate("editor", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(7), op.UserID)

	_, err = svc.Authenticate("editor", "wrong")
	assert.IsType(t, &ErrInvalidCredentials{}, err)

	_, err = svc.Authenticate("nobody", "s3cret-pass")
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}
