// Package finance orchestrates the banking-vendor integration: linking
// institutions, importing balances and synchronizing transactions.
package finance

import (
	"context"
	"errors"
	"log/slog"

	"anex/internal/cache"
	"anex/internal/config"
	"anex/internal/middleware"
	"anex/internal/models"
	"anex/internal/plaid"
	"anex/internal/repository"

	"gorm.io/gorm"
)

// Service coordinates vendor calls and local persistence for linked items.
type Service struct {
	cfg    *config.Config
	api    plaid.API
	db     *gorm.DB
	items  repository.ItemRepository
	groups repository.GroupRepository
	txns   repository.TransactionRepository
}

// NewService creates a finance service around the given vendor API and database.
func NewService(cfg *config.Config, api plaid.API, db *gorm.DB) *Service {
	return &Service{
		cfg:    cfg,
		api:    api,
		db:     db,
		items:  repository.NewItemRepository(db),
		groups: repository.NewGroupRepository(db),
		txns:   repository.NewTransactionRepository(db),
	}
}

// countVendorError bumps the vendor error counter when err carries a
// structured vendor payload.
func countVendorError(err error) {
	var apiErr *plaid.APIError
	if errors.As(err, &apiErr) {
		middleware.VendorAPIErrors.WithLabelValues(apiErr.Endpoint).Inc()
	}
}

// CreateLinkToken requests a link token for the client-side link flow.
// Missing vendor credentials surface as a validation error the UI can show,
// not an internal failure.
func (s *Service) CreateLinkToken(ctx context.Context, userID uint) (*plaid.LinkTokenResponse, error) {
	if !s.cfg.PlaidConfigured() {
		return nil, models.NewValidationError("The banking service is not configured")
	}
	resp, err := s.api.CreateLinkToken(ctx, clientUserID(userID))
	if err != nil {
		countVendorError(err)
		return nil, err
	}
	return resp, nil
}

// ExchangePublicToken trades a public token for a durable credential. The
// caller decides where the result is parked; nothing is persisted here.
func (s *Service) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	if !s.cfg.PlaidConfigured() {
		return nil, models.NewValidationError("The banking service is not configured")
	}
	resp, err := s.api.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		countVendorError(err)
		return nil, err
	}
	return resp, nil
}

// InstitutionName resolves an institution id to its display name, cached for
// a day since institution metadata effectively never changes.
func (s *Service) InstitutionName(ctx context.Context, insID string) (string, error) {
	var ins plaid.Institution
	err := cache.Aside(ctx, cache.InstitutionKey(insID), &ins, cache.InstitutionTTL, func() error {
		resolved, err := s.api.GetInstitution(ctx, insID)
		if err != nil {
			countVendorError(err)
			return err
		}
		ins = *resolved
		return nil
	})
	if err != nil {
		return "", err
	}
	return ins.Name, nil
}

// HasInstitution reports whether the user already linked the institution.
func (s *Service) HasInstitution(ctx context.Context, userID uint, insID string) (bool, error) {
	return s.items.HasInstitution(ctx, userID, insID)
}

// ImportItem persists a freshly exchanged item: one Item row plus one Account
// row per vendor account, all assigned to the user's default group.
//
// Account rows are committed independently, so a failure partway through
// leaves the already-created accounts in place; re-running the import for the
// same vendor item fails on the item primary key rather than duplicating.
func (s *Service) ImportItem(ctx context.Context, userID uint, accessToken string) (*models.Item, error) {
	resp, err := s.api.GetBalances(ctx, accessToken)
	if err != nil {
		countVendorError(err)
		return nil, err
	}

	insName, err := s.InstitutionName(ctx, resp.Item.InstitutionID)
	if err != nil {
		// The institution name is display-only; a lookup failure should not
		// block the import.
		middleware.Logger.WarnContext(ctx, "institution lookup failed",
			slog.String("ins_id", resp.Item.InstitutionID),
			slog.String("error", err.Error()))
		insName = ""
	}

	item := &models.Item{
		ID:          resp.Item.ItemID,
		AccessToken: accessToken,
		UserID:      userID,
		InsID:       resp.Item.InstitutionID,
		InsName:     insName,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	group, err := s.groups.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, acc := range resp.Accounts {
		account := &models.Account{
			ID:             acc.AccountID,
			Name:           acc.Name,
			ItemID:         item.ID,
			CurrentBalance: acc.Balances.Current,
			Type:           acc.Subtype,
			GroupID:        group.ID,
		}
		if err := s.items.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	middleware.Logger.InfoContext(ctx, "item imported",
		slog.String("item_id", item.ID),
		slog.String("institution", insName),
		slog.Int("accounts", len(resp.Accounts)))

	return item, nil
}

// RefreshBalances re-fetches balances for an already linked item and updates
// each known account by its external id. Unknown accounts are skipped; they
// appear through a NEW_ACCOUNTS_AVAILABLE webhook, not here.
func (s *Service) RefreshBalances(ctx context.Context, itemID string) (*plaid.BalancesResponse, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.GetBalances(ctx, item.AccessToken)
	if err != nil {
		countVendorError(err)
		return nil, err
	}

	for _, acc := range resp.Accounts {
		if _, err := s.items.GetAccount(ctx, acc.AccountID); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				continue
			}
			return nil, err
		}
		if err := s.items.UpdateAccountBalance(ctx, acc.AccountID, acc.Balances.Current); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// DeleteItem unlinks the item at the vendor, then removes the item with its
// accounts and transactions locally. The vendor call runs first: if it fails,
// local data stays untouched and the operation can be retried.
func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.api.RemoveItem(ctx, item.AccessToken); err != nil {
		countVendorError(err)
		return err
	}

	if err := s.items.DeleteCascade(ctx, itemID); err != nil {
		// The item is gone at the vendor but still present locally. Surface
		// the error; a retried delete will fail the vendor call, so this
		// state needs operator attention.
		middleware.Logger.ErrorContext(ctx, "local deletion failed after vendor removal",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		return err
	}

	middleware.Logger.InfoContext(ctx, "item deleted", slog.String("item_id", itemID))
	return nil
}
