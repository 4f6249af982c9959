package finance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"anex/internal/middleware"
	"anex/internal/models"
	"anex/internal/plaid"
	"anex/internal/repository"

	"gorm.io/gorm"
)

// SyncResult summarizes one sync run.
type SyncResult struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
	Pages    int `json:"pages"`
}

// Sync drains the item's transaction change stream and applies it locally.
//
// Paging and application are deliberately separate phases. The cursor is
// persisted after every fetched page, so a crash mid-paging loses at most one
// page of progress. Accumulated changes are applied in a single database
// transaction only after the stream reports no more pages; a vendor error
// mid-paging aborts the run and the partial in-memory batch is discarded.
func (s *Service) Sync(ctx context.Context, itemID string) (*SyncResult, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var (
		added    []plaid.SyncTransaction
		modified []plaid.SyncTransaction
		removed  []plaid.RemovedTransaction
	)

	result := &SyncResult{}
	cursor := item.Cursor // empty means start of history

	for {
		page, err := s.api.SyncTransactions(ctx, item.AccessToken, cursor)
		if err != nil {
			countVendorError(err)
			return nil, err
		}
		result.Pages++
		middleware.SyncPages.Inc()

		added = append(added, page.Added...)
		modified = append(modified, page.Modified...)
		removed = append(removed, page.Removed...)

		cursor = page.NextCursor
		if err := s.items.UpdateCursor(ctx, itemID, cursor); err != nil {
			return nil, err
		}

		if !page.HasMore {
			break
		}
	}

	if len(added) == 0 && len(modified) == 0 && len(removed) == 0 {
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txns := repository.NewTransactionRepository(tx)

		for i := range added {
			if err := s.applyAdded(ctx, txns, item.UserID, &added[i]); err != nil {
				return err
			}
			result.Added++
		}

		for i := range modified {
			applied, err := s.applyModified(ctx, txns, &modified[i])
			if err != nil {
				return err
			}
			if applied {
				result.Modified++
			}
		}

		for _, rm := range removed {
			if err := txns.DeleteByID(ctx, rm.TransactionID); err != nil {
				return err
			}
			result.Removed++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.SyncTransactions.WithLabelValues("added").Add(float64(result.Added))
	middleware.SyncTransactions.WithLabelValues("modified").Add(float64(result.Modified))
	middleware.SyncTransactions.WithLabelValues("removed").Add(float64(result.Removed))

	middleware.Logger.InfoContext(ctx, "transaction sync completed",
		slog.String("item_id", itemID),
		slog.Int("pages", result.Pages),
		slog.Int("added", result.Added),
		slog.Int("modified", result.Modified),
		slog.Int("removed", result.Removed))

	return result, nil
}

// applyAdded inserts a new transaction, carrying forward a prior user rename
// when the vendor label exactly matches one the user renamed before.
func (s *Service) applyAdded(ctx context.Context, txns repository.TransactionRepository, userID uint, t *plaid.SyncTransaction) error {
	newName, err := txns.FindRename(ctx, userID, t.Name)
	if err != nil {
		return err
	}

	return txns.Create(ctx, &models.Transaction{
		ID:             t.TransactionID,
		OriginalName:   t.Name,
		NewName:        newName,
		AccountID:      t.AccountID,
		Date:           t.ParsedDate(),
		VendorName:     t.MerchantName,
		VendorType:     t.TransactionType,
		Amount:         t.Amount,
		ISOCurrency:    t.ISOCurrency,
		PaymentChannel: t.PaymentChannel,
		CategoryName:   t.PrimaryCategory(),
		CategoryID:     t.CategoryID,
	})
}

// applyModified overwrites the stored row's mutable fields in place. A
// modification for an id we never stored is logged and skipped rather than
// failing the whole batch.
func (s *Service) applyModified(ctx context.Context, txns repository.TransactionRepository, t *plaid.SyncTransaction) (bool, error) {
	existing, err := txns.GetByID(ctx, t.TransactionID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			middleware.Logger.WarnContext(ctx, "modified transaction not found locally",
				slog.String("transaction_id", t.TransactionID))
			return false, nil
		}
		return false, err
	}

	existing.OriginalName = t.Name
	existing.AccountID = t.AccountID
	existing.Date = t.ParsedDate()
	existing.VendorName = t.MerchantName
	existing.VendorType = t.TransactionType
	existing.Amount = t.Amount
	existing.ISOCurrency = t.ISOCurrency
	existing.PaymentChannel = t.PaymentChannel
	existing.CategoryName = t.PrimaryCategory()
	existing.CategoryID = t.CategoryID

	if err := txns.Update(ctx, existing); err != nil {
		return false, err
	}
	return true, nil
}

// clientUserID formats a user id for vendor client_user_id fields.
func clientUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
