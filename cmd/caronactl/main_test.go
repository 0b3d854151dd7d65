package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/chris/caronaexpress/pkg/middleware"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := run(t, "token", "ana", "--name", "Ana")
	require.NoError(t, err)

	var claims middleware.Claims
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), &claims, func(*jwt.Token) (any, error) { return []byte("cli-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
}

func TestAccountCredit(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")

	t.Run("Success", func(t *testing.T) {
		out, err := run(t, "account", "credit", "ana", "25,50", "--name", "Ana")
		require.NoError(t, err)

		var acct models.Account
		require.NoError(t, json.Unmarshal([]byte(out), &acct))
		assert.Equal(t, "ana", acct.UserID)
		assert.True(t, acct.Balance.EqualTo(models.MustMoney("25.50")))
	})

	t.Run("Bad Amount", func(t *testing.T) {
		_, err := run(t, "account", "credit", "ana", "lots")
		assert.Error(t, err)
	})
}

func TestTablesCreateNeedsDynamoDB(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")

	_, err := run(t, "tables", "create")

	assert.ErrorContains(t, err, "STORAGE_BACKEND=dynamodb")
}
