// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"anex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	NumTransactions int
	ShouldClean     bool
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	if err := createFollows(db, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}

	if err := createPosts(db, users, opts.NumPosts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", opts.NumPosts)

	if err := createBankData(db, users, opts.NumTransactions); err != nil {
		return fmt.Errorf("failed to create bank data: %w", err)
	}

	log.Println("Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	// Child tables first to keep foreign keys happy.
	for _, model := range []any{
		&models.Transaction{}, &models.Account{}, &models.Item{}, &models.Group{},
		&models.Follow{}, &models.Post{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := NewUser()
		user.Password = string(hashed)
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		// A default group mirrors what signup does.
		group := &models.Group{UserID: user.ID, Name: models.DefaultGroupName}
		if err := db.Create(group).Error; err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// createFollows wires a sparse random follow graph, roughly 5 follows per user.
func createFollows(db *gorm.DB, users []models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, user := range users {
		for i := 0; i < 5; i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			follow := models.Follow{FollowerID: user.ID, FollowedID: target.ID}
			// Duplicate pairs are fine to skip.
			db.Where(&follow).FirstOrCreate(&follow)
		}
	}
	return nil
}

func createPosts(db *gorm.DB, users []models.User, count int) error {
	if len(users) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := NewPost(author.ID)
		if err := db.Create(post).Error; err != nil {
			return err
		}
	}
	return nil
}

// createBankData gives roughly a third of the users a linked item with
// accounts and a spread of transactions.
func createBankData(db *gorm.DB, users []models.User, txnsPerUser int) error {
	for i, user := range users {
		if i%3 != 0 {
			continue
		}

		var group models.Group
		if err := db.First(&group, "user_id = ?", user.ID).Error; err != nil {
			return err
		}

		item := NewItem(user.ID)
		if err := db.Create(item).Error; err != nil {
			return err
		}

		accounts := []*models.Account{
			NewAccount(item.ID, group.ID, "checking"),
			NewAccount(item.ID, group.ID, "savings"),
		}
		for _, account := range accounts {
			if err := db.Create(account).Error; err != nil {
				return err
			}
		}

		for j := 0; j < txnsPerUser; j++ {
			account := accounts[rand.Intn(len(accounts))]
			txn := NewTransaction(account.ID)
			if err := db.Create(txn).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// randomAmount returns a plausible transaction amount between 1.00 and 250.00.
func randomAmount() decimal.Decimal {
	cents := rand.Int63n(24900) + 100
	return decimal.New(cents, -2)
}
