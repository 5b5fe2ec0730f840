package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
)

// Byte budgets for the key-value store, accounted UTF-16 style (2 bytes per
// UTF-16 code unit of the serialized JSON) to stay faithful to the 5 MB
// browser localStorage contract this store mirrors.
const (
	TotalBudgetBytes = 5 * 1024 * 1024
	ItemBudgetBytes  = 1 * 1024 * 1024
)

var stateBucket = []byte("state")

const probeKey = "yto.__probe__"

// KeyValueStore is a synchronous get/set/remove store over a single bbolt
// bucket with quota enforcement and least-priority eviction.
//
// All methods report success as a boolean rather than an error: callers treat
// a failed read as "use the default" and a failed write as a non-fatal,
// logged degradation.
type KeyValueStore struct {
	db     *bolt.DB
	logger *log.Logger

	totalBudget int
	itemBudget  int
}

// NewKeyValueStore opens (or creates) the bbolt file at path and ensures the
// state bucket exists.
func NewKeyValueStore(path string, logger *log.Logger) (*KeyValueStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state bucket: %w", err)
	}

	return &KeyValueStore{
		db:          db,
		logger:      logger,
		totalBudget: TotalBudgetBytes,
		itemBudget:  ItemBudgetBytes,
	}, nil
}

// Close closes the underlying bbolt database.
func (s *KeyValueStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Set serializes value under key, enforcing the per-item and total byte
// budgets. When the total budget would be exceeded, lower-priority keys are
// evicted in ascending priority order (never the key being written, never the
// auth token) and the write retried after each eviction. Returns false when
// the value cannot be stored.
func (s *KeyValueStore) Set(key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to serialize value", "key", key, "err", err)
		return false
	}

	size := utf16Size(data)
	if size > s.itemBudget {
		s.logger.Warn("value exceeds per-item budget", "key", key, "size", size)
		return false
	}

	if s.put(key, data, size) {
		return true
	}

	for _, victim := range evictionOrder {
		if victim == key || victim == KeyAuthToken {
			continue
		}
		if !s.delete(victim) {
			continue
		}
		s.logger.Warn("evicted key to reclaim quota", "evicted", victim, "for", key)
		if s.put(key, data, size) {
			return true
		}
	}

	s.logger.Warn("quota exhausted, write rejected", "key", key, "size", size)
	return false
}

// Get deserializes the value stored under key into dest. A corrupted value is
// removed and reported as absent; corruption never propagates to callers.
func (s *KeyValueStore) Get(key string, dest any) bool {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(stateBucket).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("removing corrupt value", "key", key, "err", err)
		s.Remove(key)
		return false
	}
	return true
}

// Remove deletes the value stored under key.
func (s *KeyValueStore) Remove(key string) bool {
	return s.delete(key)
}

// IsAvailable performs a real write+delete probe. Feature detection is not
// enough: the file may exist but be unwritable, so any error means unavailable.
func (s *KeyValueStore) IsAvailable() bool {
	if s == nil || s.db == nil {
		return false
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		if err := b.Put([]byte(probeKey), []byte("1")); err != nil {
			return err
		}
		return b.Delete([]byte(probeKey))
	})
	return err == nil
}

// put writes data under key only if the total budget allows it.
func (s *KeyValueStore) put(key string, data []byte, size int) bool {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)

		used := 0
		if err := b.ForEach(func(k, v []byte) error {
			if string(k) != key {
				used += utf16Size(v)
			}
			return nil
		}); err != nil {
			return err
		}
		if used+size > s.totalBudget {
			return fmt.Errorf("quota exceeded: %d + %d > %d", used, size, s.totalBudget)
		}

		return b.Put([]byte(key), data)
	})
	return err == nil
}

func (s *KeyValueStore) delete(key string) bool {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete([]byte(key))
	})
	return err == nil
}

// utf16Size returns the size of data accounted at 2 bytes per UTF-16 code
// unit, matching how browsers charge localStorage quota.
func utf16Size(data []byte) int {
	units := 0
	for _, r := range string(data) {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units * 2
}
