package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/keystrand/keystrand-go/auth"
	apperrors "github.com/keystrand/keystrand-go/internal/platform/errors"
	"github.com/keystrand/keystrand-go/internal/platform/httpapi"
)

// Record describes one provisioned wallet on the account.
type Record struct {
	Type    auth.WalletType `json:"type"`
	Address string          `json:"address"`
}

// Inventory is the backend's view of the account's wallets. The first
// record's type decides which custody backend the SDK constructs.
type Inventory struct {
	Wallets []Record `json:"wallets"`
}

// QueryInventory asks the backend which wallets the authenticated account
// has. A nil inventory means the token no longer names a logged-in user.
func QueryInventory(ctx context.Context, api *httpapi.Client, authToken string) (*Inventory, error) {
	var inventory Inventory
	err := api.Get(ctx, "/accounts/status", nil, authToken, &inventory)
	if err != nil {
		if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) ||
			errors.Is(err, apperrors.New(apperrors.CodeSessionMissing, "")) {
			return nil, nil
		}
		return nil, fmt.Errorf("query wallet inventory: %w", err)
	}
	return &inventory, nil
}
