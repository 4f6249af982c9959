package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix        = "user:%d"
	InstitutionKeyPrefix = "institution:%s"
	PendingLinkPrefix    = "link:pending:%d"
)

const (
	UserTTL        = 5 * time.Minute
	InstitutionTTL = 24 * time.Hour
	PendingLinkTTL = 15 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func InstitutionKey(insID string) string {
	return fmt.Sprintf(InstitutionKeyPrefix, insID)
}

func PendingLinkKey(userID uint) string {
	return fmt.Sprintf(PendingLinkPrefix, userID)
}

// Aside implements the cache-aside pattern: on a hit, dest is populated from
// the cached JSON; on a miss, fill is invoked and its result cached. All cache
// failures degrade to calling fill directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry: drop it and fall through to fill.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		return fill()
	}

	if err := fill(); err != nil {
		return err
	}

	if encoded, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

// Invalidate removes a key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser removes a cached user.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// PendingLink is the exchange result parked between the public-token exchange
// and the balance import that persists the item. It is scoped per user so
// concurrent link flows cannot clobber each other.
type PendingLink struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ErrNoPendingLink indicates no link exchange is awaiting import for the user.
var ErrNoPendingLink = errors.New("no pending link for user")

// SavePendingLink parks an exchanged access token for the user.
func SavePendingLink(ctx context.Context, userID uint, link PendingLink) error {
	if client == nil {
		return errors.New("link flow requires Redis")
	}
	encoded, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return client.Set(ctx, PendingLinkKey(userID), encoded, PendingLinkTTL).Err()
}

// GetPendingLink returns the user's parked link exchange, if any.
func GetPendingLink(ctx context.Context, userID uint) (*PendingLink, error) {
	if client == nil {
		return nil, ErrNoPendingLink
	}
	raw, err := client.Get(ctx, PendingLinkKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoPendingLink
	}
	if err != nil {
		return nil, err
	}
	var link PendingLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ClearPendingLink drops the user's parked link exchange.
func ClearPendingLink(ctx context.Context, userID uint) {
	Invalidate(ctx, PendingLinkKey(userID))
}
