package seed

import (
	"fmt"
	"math/rand"
	"time"

	"anex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var vendorNames = []string{
	"STARBUCKS #1042", "WHOLE FOODS MKT", "SHELL OIL 5551", "NETFLIX.COM",
	"AMZN MKTP US", "UBER TRIP", "TRADER JOE'S #88", "CVS/PHARMACY",
	"SPOTIFY USA", "DELTA AIR LINES", "CHIPOTLE 2203", "HOME DEPOT #412",
}

var categories = []struct {
	name string
	id   string
}{
	{"Food and Drink", "13005000"},
	{"Shops", "19046000"},
	{"Travel", "22001000"},
	{"Recreation", "17001000"},
	{"Service", "18020000"},
}

// NewUser returns an unsaved user with realistic profile data.
func NewUser() *models.User {
	return &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      trimRunes(gofakeit.Sentence(8), 140),
	}
}

// NewPost returns an unsaved post for the given author.
func NewPost(userID uint) *models.Post {
	return &models.Post{
		Body:     trimRunes(gofakeit.Sentence(gofakeit.Number(4, 16)), models.MaxPostLength),
		Language: "en",
		UserID:   userID,
	}
}

// NewItem returns an unsaved linked item with fake vendor identifiers.
func NewItem(userID uint) *models.Item {
	bank := gofakeit.Company()
	return &models.Item{
		ID:          "item-" + uuid.New().String(),
		AccessToken: "access-sandbox-" + uuid.New().String(),
		UserID:      userID,
		InsID:       fmt.Sprintf("ins_%d", gofakeit.Number(1, 140)),
		InsName:     bank,
	}
}

// NewAccount returns an unsaved account under the given item and group.
func NewAccount(itemID string, groupID uint, accountType string) *models.Account {
	return &models.Account{
		ID:             "acct-" + uuid.New().String(),
		Name:           capitalize(accountType) + " Account",
		ItemID:         itemID,
		CurrentBalance: randomAmount().Mul(randomAmount()),
		Type:           accountType,
		GroupID:        groupID,
	}
}

// NewTransaction returns an unsaved transaction dated within the last 90 days.
func NewTransaction(accountID string) *models.Transaction {
	vendor := vendorNames[rand.Intn(len(vendorNames))]
	category := categories[rand.Intn(len(categories))]
	date := time.Now().AddDate(0, 0, -rand.Intn(90))

	return &models.Transaction{
		ID:             "txn-" + uuid.New().String(),
		OriginalName:   vendor,
		AccountID:      accountID,
		Date:           &date,
		VendorName:     vendor,
		Amount:         randomAmount(),
		ISOCurrency:    "USD",
		PaymentChannel: "in store",
		CategoryName:   category.name,
		CategoryID:     category.id,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func trimRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
