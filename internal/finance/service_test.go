package finance

import (
	"context"
	"errors"
	"testing"

	"anex/internal/config"
	"anex/internal/models"
	"anex/internal/plaid"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBalances() *plaid.BalancesResponse {
	return &plaid.BalancesResponse{
		Accounts: []plaid.BalanceAccount{
			{
				AccountID: "acct-1",
				Name:      "Checking",
				Type:      "depository",
				Subtype:   "checking",
				Balances:  plaid.Balances{Current: decimal.RequireFromString("1250.75"), ISOCurrency: "USD"},
			},
			{
				AccountID: "acct-2",
				Name:      "Savings",
				Type:      "depository",
				Subtype:   "savings",
				Balances:  plaid.Balances{Current: decimal.RequireFromString("9000.00"), ISOCurrency: "USD"},
			},
		},
		Item: plaid.ItemInfo{ItemID: "item-1", InstitutionID: "ins_1"},
	}
}

func TestCreateLinkToken_Unconfigured(t *testing.T) {
	svc := &Service{cfg: &config.Config{}}
	_, err := svc.CreateLinkToken(context.Background(), 1)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestImportItem_CreatesItemAndAccounts(t *testing.T) {
	api := &stubAPI{
		balances:    sampleBalances(),
		institution: &plaid.Institution{InstitutionID: "ins_1", Name: "First Bank"},
	}
	svc, db := newTestService(t, api)

	user := &models.User{Username: "frida", Email: "frida@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	item, err := svc.ImportItem(context.Background(), user.ID, "access-1")
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "ins_1", item.InsID)
	assert.Equal(t, "First Bank", item.InsName)

	var accounts []models.Account
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("id").Find(&accounts).Error)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].CurrentBalance.Equal(decimal.RequireFromString("1250.75")))
	assert.Equal(t, "checking", accounts[0].Type)

	// Every imported account lands in the user's default group.
	var group models.Group
	require.NoError(t, db.First(&group, "user_id = ? AND name = ?", user.ID, models.DefaultGroupName).Error)
	for _, a := range accounts {
		assert.Equal(t, group.ID, a.GroupID)
	}
}

func TestImportItem_InstitutionLookupFailureIsNonFatal(t *testing.T) {
	api := &stubAPI{balances: sampleBalances()}
	svc, db := newTestService(t, api)

	user := &models.User{Username: "frida", Email: "frida@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	item, err := svc.ImportItem(context.Background(), user.ID, "access-1")
	require.NoError(t, err)
	assert.Empty(t, item.InsName)
}

func TestHasInstitution(t *testing.T) {
	svc, db := newTestService(t, &stubAPI{})
	user, _, _ := seedLinkedItem(t, db)

	linked, err := svc.HasInstitution(context.Background(), user.ID, "ins_1")
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = svc.HasInstitution(context.Background(), user.ID, "ins_other")
	require.NoError(t, err)
	assert.False(t, linked)
}

func TestRefreshBalances_UpdatesWithoutDuplicating(t *testing.T) {
	refreshed := sampleBalances()
	refreshed.Accounts = refreshed.Accounts[:1]
	refreshed.Accounts[0].Balances.Current = decimal.RequireFromString("42.00")

	api := &stubAPI{balances: refreshed}
	svc, db := newTestService(t, api)
	_, item, account := seedLinkedItem(t, db)

	_, err := svc.RefreshBalances(context.Background(), item.ID)
	require.NoError(t, err)

	var stored models.Account
	require.NoError(t, db.First(&stored, "id = ?", account.ID).Error)
	assert.True(t, stored.CurrentBalance.Equal(decimal.RequireFromString("42.00")))

	var count int64
	db.Model(&models.Account{}).Where("item_id = ?", item.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteItem_CascadesLocally(t *testing.T) {
	api := &stubAPI{}
	svc, db := newTestService(t, api)
	_, item, account := seedLinkedItem(t, db)

	require.NoError(t, db.Create(&models.Transaction{
		ID: "txn-1", OriginalName: "COFFEE", AccountID: account.ID,
	}).Error)

	require.NoError(t, svc.DeleteItem(context.Background(), item.ID))
	assert.Equal(t, []string{"access-1"}, api.removedItems)

	var items, accounts, txns int64
	db.Model(&models.Item{}).Count(&items)
	db.Model(&models.Account{}).Count(&accounts)
	db.Model(&models.Transaction{}).Count(&txns)
	assert.Zero(t, items)
	assert.Zero(t, accounts)
	assert.Zero(t, txns)
}

func TestDeleteItem_VendorFailureKeepsLocalData(t *testing.T) {
	api := &stubAPI{removeErr: &plaid.APIError{Endpoint: "/item/remove", ErrorCode: "INTERNAL_SERVER_ERROR"}}
	svc, db := newTestService(t, api)
	_, item, _ := seedLinkedItem(t, db)

	err := svc.DeleteItem(context.Background(), item.ID)
	require.Error(t, err)

	var count int64
	db.Model(&models.Item{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
