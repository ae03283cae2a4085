package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	fieldStoreID = "store_id"
	fieldAddress = "address"
	fieldPhone   = "phone"
)

// RedisStore keeps guest ids and remembered preferences in redis.
type RedisStore struct {
	client   redis.UniversalClient
	guestTTL time.Duration
}

func NewRedisStore(client redis.UniversalClient, guestTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		guestTTL: guestTTL,
	}
}

func (s *RedisStore) GuestID(ctx context.Context, deviceID string) (string, bool, error) {
	id, err := s.client.Get(ctx, guestKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}

	return id, true, nil
}

const bindAttempts = 3

// BindGuestID sets the device binding with SETNX. When another request bound
// the device first, the stored id wins.
func (s *RedisStore) BindGuestID(ctx context.Context, deviceID, guestID string) (string, error) {
	for range bindAttempts {
		ok, err := s.client.SetNX(ctx, guestKey(deviceID), guestID, s.guestTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx failed: %w", err)
		}
		if ok {
			return guestID, nil
		}

		stored, found, err := s.GuestID(ctx, deviceID)
		if err != nil {
			return "", err
		}
		if found {
			return stored, nil
		}
		// the binding expired between SETNX and GET
	}
	return "", fmt.Errorf("device[%s]: guest binding kept changing", deviceID)
}

func (s *RedisStore) Remembered(ctx context.Context, ownerID string) (domain.Remembered, error) {
	if ownerID == "" {
		return domain.Remembered{}, fmt.Errorf("ownerID is empty")
	}

	m, err := s.client.HGetAll(ctx, prefsKey(ownerID)).Result()
	if err != nil {
		return domain.Remembered{}, fmt.Errorf("redis hgetall failed: %w", err)
	}

	return domain.Remembered{
		StoreID: m[fieldStoreID],
		Address: m[fieldAddress],
		Phone:   m[fieldPhone],
	}, nil
}

// Remember stores the non-empty fields of r, leaving the others as they were.
func (s *RedisStore) Remember(ctx context.Context, ownerID string, r domain.Remembered) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	values := make(map[string]any, 3)
	if r.StoreID != "" {
		values[fieldStoreID] = r.StoreID
	}
	if r.Address != "" {
		values[fieldAddress] = r.Address
	}
	if r.Phone != "" {
		values[fieldPhone] = r.Phone
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, prefsKey(ownerID), values).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	return nil
}

func guestKey(deviceID string) string {
	return fmt.Sprintf("guest:%s", deviceID)
}

func prefsKey(ownerID string) string {
	return fmt.Sprintf("prefs:%s", ownerID)
}
