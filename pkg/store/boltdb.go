package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/heron-executor/pkg/execerr"
	"github.com/cuemby/heron-executor/pkg/log"
)

var bucketPlans = []byte("packing_plans")

// pollInterval paces change detection against the backing file; bbolt
// has no native push notification.
const pollInterval = 2 * time.Second

// BoltPlanStore implements PlanStore on top of a local bbolt database,
// polling for changes rather than pushing them.
type BoltPlanStore struct {
	db *bolt.DB

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	stopped bool
}

// NewBoltPlanStore opens (creating if absent) a bbolt database under
// dataDir for packing-plan storage.
func NewBoltPlanStore(dataDir string) (*BoltPlanStore, error) {
	dbPath := filepath.Join(dataDir, "executor-plans.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPlans)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create bucket: %w", err)
	}

	return &BoltPlanStore{db: db, stopCh: make(chan struct{})}, nil
}

// PutInstanceDistribution writes the current instance_distribution for
// topologyName. This is the write side a real coordination-store client
// would expose externally; a local, single-process store exposes it
// directly so tests and operators can push updates.
func (s *BoltPlanStore) PutInstanceDistribution(topologyName, distribution string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlans).Put([]byte(topologyName), []byte(distribution))
	})
}

func (s *BoltPlanStore) get(topologyName string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketPlans).Get([]byte(topologyName))
		value = string(data)
		return nil
	})
	return value, err
}

// Subscribe polls the bucket for topologyName every pollInterval and
// invokes fn whenever the stored value changes, after one synchronous
// initial invocation with whatever is currently stored (possibly
// empty). Delivery is at-least-once and ordered per topology.
func (s *BoltPlanStore) Subscribe(topologyName string, fn UpdateFunc) error {
	initial, err := s.get(topologyName)
	if err != nil {
		return fmt.Errorf("store: initial read: %w", err)
	}
	fn(initial)

	logger := log.WithComponent("store").With().Str("topology", topologyName).Logger()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		last := initial
		for {
			select {
			case <-ticker.C:
				current, err := s.get(topologyName)
				if err != nil {
					logger.Warn().Err(&execerr.StoreDisconnect{Cause: err}).Msg("poll failed, will retry")
					continue
				}
				if current != last {
					last = current
					fn(current)
				}
			case <-s.stopCh:
				return
			}
		}
	}()

	return nil
}

// Close stops all subscription goroutines and closes the database.
func (s *BoltPlanStore) Close() error {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}
