package storage

import (
	"context"

	"github.com/chris/caronaexpress/pkg/models"
)

// AccountStore defines the interface for managing accounts.
type AccountStore interface {
	// GetAccount retrieves an account by its user ID.
	GetAccount(ctx context.Context, userID string) (*models.Account, error)

	// CreateAccount creates a new account. It returns ErrAlreadyExists if the user already has one.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
}
