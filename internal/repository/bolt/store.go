package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var entriesBucket = []byte("kv_entries")

// entry is the on-disk envelope; bbolt has no native expiry
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store implements domain.KeyValueStore on a single bbolt file
type Store struct {
	db  *bolt.DB
	now func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Open opens (or creates) the database at path and starts the expiry sweeper.
// A non-positive sweepInterval disables sweeping; expired keys still read as misses.
func Open(path string, sweepInterval time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}

	s := &Store{db: db, now: time.Now, stop: make(chan struct{})}
	if sweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweepInterval)
	}
	return s, nil
}

// Get returns the value stored at key or domain.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var (
		e     entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		e, found, err = s.read(tx, key)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	if !found {
		return "", domain.ErrNotFound
	}
	return e.Value, nil
}

// Set stores value at key with the given expiration
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return s.write(tx, key, value, ttl)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Update runs fn inside one write transaction; bbolt serializes writers so no retry is needed
func (s *Store) Update(ctx context.Context, key string, ttl time.Duration, fn domain.UpdateFunc) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		e, found, err := s.read(tx, key)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}
		next, err := fn(e.Value, found)
		if err != nil {
			return err
		}
		return s.write(tx, key, next, ttl)
	})
}

// Ping checks that the database file is still usable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(entriesBucket) == nil {
			return fmt.Errorf("bucket %s missing", entriesBucket)
		}
		return nil
	})
}

// Close stops the sweeper and closes the database
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.db.Close()
}

// Sweep deletes expired entries and returns how many were removed
func (s *Store) Sweep() (int, error) {
	now := s.now()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || e.expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func (s *Store) read(tx *bolt.Tx, key string) (entry, bool, error) {
	raw := tx.Bucket(entriesBucket).Get([]byte(key))
	if raw == nil {
		return entry{}, false, nil
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Malformed entries are treated as absent
		return entry{}, false, nil
	}
	if e.expired(s.now()) {
		return entry{}, false, nil
	}
	return e, true, nil
}

func (s *Store) write(tx *bolt.Tx, key, value string, ttl time.Duration) error {
	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return tx.Bucket(entriesBucket).Put([]byte(key), data)
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			removed, err := s.Sweep()
			if err != nil {
				log.Warn().Err(err).Msg("bolt expiry sweep failed")
				continue
			}
			if removed > 0 {
				log.Debug().Int("removed", removed).Msg("bolt expiry sweep")
			}
		}
	}
}
