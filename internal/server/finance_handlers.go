package server

import (
	"errors"

	"anex/internal/cache"
	"anex/internal/models"
	"anex/internal/plaid"

	"github.com/gofiber/fiber/v2"
)

// respondFinanceError surfaces vendor failures as 502s with the vendor's
// display message, and delegates everything else to the usual mapping.
func respondFinanceError(c *fiber.Ctx, err error) error {
	var apiErr *plaid.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.DisplayMessage
		if msg == "" {
			msg = "The banking service returned an error"
		}
		return models.RespondWithError(c, fiber.StatusBadGateway,
			models.NewVendorError(msg, apiErr.ErrorCode, apiErr.ErrorType, err))
	}
	return respondAppError(c, err)
}

// CreateLinkToken handles POST /api/link/token
func (s *Server) CreateLinkToken(c *fiber.Ctx) error {
	resp, err := s.finance.CreateLinkToken(c.Context(), currentUserID(c))
	if err != nil {
		return respondFinanceError(c, err)
	}
	return c.JSON(fiber.Map{
		"link_token": resp.LinkToken,
		"expiration": resp.Expiration,
	})
}

// ExchangePublicToken handles POST /api/link/exchange. The resulting access
// token is parked in the user's pending link slot; nothing is persisted until
// the item is imported.
func (s *Server) ExchangePublicToken(c *fiber.Ctx) error {
	var req struct {
		PublicToken string `json:"public_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.PublicToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("public_token is required"))
	}

	resp, err := s.finance.ExchangePublicToken(c.Context(), req.PublicToken)
	if err != nil {
		return respondFinanceError(c, err)
	}

	if err := cache.SavePendingLink(c.Context(), currentUserID(c), cache.PendingLink{
		AccessToken: resp.AccessToken,
		ItemID:      resp.ItemID,
	}); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"item_id": resp.ItemID})
}

// GetInstitutionLinked handles GET /api/link/institutions/:insId/linked,
// letting the client warn before linking the same institution twice.
func (s *Server) GetInstitutionLinked(c *fiber.Ctx) error {
	insID := c.Params("insId")
	if insID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid institution id"))
	}

	linked, err := s.finance.HasInstitution(c.Context(), currentUserID(c), insID)
	if err != nil {
		return respondAppError(c, err)
	}

	payload := fiber.Map{"linked": linked}
	if name, nameErr := s.finance.InstitutionName(c.Context(), insID); nameErr == nil {
		payload["name"] = name
	}
	return c.JSON(payload)
}

// GetItems handles GET /api/items
func (s *Server) GetItems(c *fiber.Ctx) error {
	items, err := s.itemRepo.ListByUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// ImportItem handles POST /api/items, turning the user's pending link into a
// durable item with its accounts and opening balances.
func (s *Server) ImportItem(c *fiber.Ctx) error {
	userID := currentUserID(c)

	pending, err := cache.GetPendingLink(c.Context(), userID)
	if err != nil {
		if errors.Is(err, cache.ErrNoPendingLink) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("No pending bank link; exchange a public token first"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	item, err := s.finance.ImportItem(c.Context(), userID, pending.AccessToken)
	if err != nil {
		return respondFinanceError(c, err)
	}
	cache.ClearPendingLink(c.Context(), userID)

	return c.Status(fiber.StatusCreated).JSON(item)
}

// RefreshBalances handles POST /api/items/:id/balances
func (s *Server) RefreshBalances(c *fiber.Ctx) error {
	item, err := s.itemForUser(c, c.Params("id"))
	if err != nil {
		return nil
	}

	if _, err := s.finance.RefreshBalances(c.Context(), item.ID); err != nil {
		return respondFinanceError(c, err)
	}

	accounts, err := s.itemRepo.ListAccounts(c.Context(), item.ID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"accounts": accounts})
}

// SyncItem handles POST /api/items/:id/sync
func (s *Server) SyncItem(c *fiber.Ctx) error {
	item, err := s.itemForUser(c, c.Params("id"))
	if err != nil {
		return nil
	}

	result, err := s.finance.Sync(c.Context(), item.ID)
	if err != nil {
		return respondFinanceError(c, err)
	}
	return c.JSON(result)
}

// GetItemTransactions handles GET /api/items/:id/transactions
func (s *Server) GetItemTransactions(c *fiber.Ctx) error {
	item, err := s.itemForUser(c, c.Params("id"))
	if err != nil {
		return nil
	}

	txns, err := s.txnRepo.ListByItem(c.Context(), item.ID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txns})
}

// DeleteItem handles DELETE /api/items/:id
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	item, err := s.itemForUser(c, c.Params("id"))
	if err != nil {
		return nil
	}

	if err := s.finance.DeleteItem(c.Context(), item.ID); err != nil {
		return respondFinanceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetGroups handles GET /api/groups
func (s *Server) GetGroups(c *fiber.Ctx) error {
	groups, err := s.groupRepo.ListByUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Group name is required"))
	}

	group := &models.Group{UserID: currentUserID(c), Name: req.Name}
	if err := s.groupRepo.Create(c.Context(), group); err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroupTransactions handles GET /api/groups/:id/transactions
func (s *Server) GetGroupTransactions(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	group, err := s.groupRepo.GetByID(c.Context(), groupID)
	if err != nil {
		return respondAppError(c, err)
	}
	if group.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Group", groupID))
	}

	txns, err := s.txnRepo.ListByGroup(c.Context(), currentUserID(c), groupID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txns})
}

// RenameTransaction handles PUT /api/transactions/:id/name. The new label is
// applied to every one of the user's transactions from the same vendor label,
// so past and future imports stay consistent.
func (s *Server) RenameTransaction(c *fiber.Ctx) error {
	var req struct {
		NewName string `json:"new_name"`
	}
	if err := c.BodyParser(&req); err != nil || req.NewName == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("new_name is required"))
	}

	userID := currentUserID(c)
	txn, err := s.transactionForUser(c, c.Params("id"), userID)
	if err != nil {
		return nil
	}

	updated, err := s.txnRepo.RenameMatching(c.Context(), userID, txn.OriginalName, req.NewName)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"new_name": req.NewName,
		"updated":  updated,
	})
}

// transactionForUser loads a transaction and verifies ownership through its
// account's item. Foreign transactions read as not found.
func (s *Server) transactionForUser(c *fiber.Ctx, id string, userID uint) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByID(c.Context(), id)
	if err != nil {
		_ = respondAppError(c, err)
		return nil, errResponseWritten
	}

	account, err := s.itemRepo.GetAccount(c.Context(), txn.AccountID)
	if err != nil {
		_ = respondAppError(c, err)
		return nil, errResponseWritten
	}
	item, err := s.itemRepo.GetByID(c.Context(), account.ItemID)
	if err != nil {
		_ = respondAppError(c, err)
		return nil, errResponseWritten
	}
	if item.UserID != userID {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Transaction", id))
		return nil, errResponseWritten
	}
	return txn, nil
}
