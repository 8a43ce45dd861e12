package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/model"
)

var (
	historyBucket       = []byte("history")
	subscriptionsBucket = []byte("push_subscriptions")
)

// BoltStore holds the append-only history map and the Web Push subscriptions.
type BoltStore struct {
	db *bbolt.DB
}

func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(subscriptionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

// Archive writes the final intake for dateKey. An existing entry is left as
// is and hydration.ErrAlreadyArchived is returned.
func (b *BoltStore) Archive(dateKey string, intake int) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(historyBucket)
		if bucket.Get([]byte(dateKey)) != nil {
			return fmt.Errorf("%s: %w", dateKey, hydration.ErrAlreadyArchived)
		}
		return bucket.Put([]byte(dateKey), []byte(strconv.Itoa(intake)))
	})
}

// History lists archived days, newest first.
func (b *BoltStore) History() ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			intake, err := strconv.Atoi(string(v))
			if err != nil {
				continue
			}
			entries = append(entries, model.HistoryEntry{DateKey: string(k), Intake: intake})
		}
		return nil
	})
	return entries, err
}

// HistoryMap returns history as date key -> final intake.
func (b *BoltStore) HistoryMap() (map[string]int, error) {
	entries, err := b.History()
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		m[e.DateKey] = e.Intake
	}
	return m, nil
}

// SaveSubscription stores sub keyed by its endpoint, replacing any previous keys.
func (b *BoltStore) SaveSubscription(sub model.PushSubscription) error {
	if sub.Endpoint == "" {
		return fmt.Errorf("subscription endpoint is empty")
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(subscriptionsBucket).Put([]byte(sub.Endpoint), data)
	})
}

func (b *BoltStore) Subscriptions() ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(subscriptionsBucket).ForEach(func(_, v []byte) error {
			var sub model.PushSubscription
			if err := json.Unmarshal(v, &sub); err != nil {
				return nil
			}
			subs = append(subs, sub)
			return nil
		})
	})
	return subs, err
}

func (b *BoltStore) DeleteSubscription(endpoint string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(subscriptionsBucket).Delete([]byte(endpoint))
	})
}
