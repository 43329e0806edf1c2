// Package guardians keeps published guardian sets and serves them to verifiers.
package guardians

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/log"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/sql/guardiansets"
)

// DefaultCacheSize is the number of sets kept in memory.
const DefaultCacheSize = 16

// Opt is for configuring Store.
type Opt func(*Store)

// WithLogger configures logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCacheSize sets the number of cached sets.
func WithCacheSize(size int) Opt {
	return func(s *Store) {
		s.cacheSize = size
	}
}

// Store persists guardian sets and caches the ones recently used. Sets are immutable,
// so a cached set never goes stale.
type Store struct {
	logger    *zap.Logger
	db        *sql.Database
	cacheSize int
	cache     *lru.Cache[uint32, *types.GuardianSet]
	loads     singleflight.Group
}

// New creates a Store backed by db.
func New(db *sql.Database, opts ...Opt) (*Store, error) {
	s := &Store{
		logger:    zap.NewNop(),
		db:        db,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	cache, err := lru.New[uint32, *types.GuardianSet](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create guardian set cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Add publishes a set. Publishing an index twice fails with sql.ErrObjectExists.
func (s *Store) Add(ctx context.Context, set *types.GuardianSet) error {
	if len(set.Keys) == 0 || len(set.Keys) > types.MaxGuardians {
		return fmt.Errorf("guardian set %d has %d keys", set.Index, len(set.Keys))
	}
	if err := guardiansets.Add(s.db, set); err != nil {
		return err
	}
	s.logger.Info("guardian set published",
		log.ZContext(ctx),
		zap.Uint32("index", set.Index),
		zap.Int("guardians", len(set.Keys)),
		zap.Uint32("expiration", set.ExpirationTime),
	)
	return nil
}

// GuardianSet returns a copy of the set published under index.
func (s *Store) GuardianSet(ctx context.Context, index uint32) (*types.GuardianSet, error) {
	if set, ok := s.cache.Get(index); ok {
		cacheHits.Inc()
		return set.Copy(), nil
	}
	cacheMisses.Inc()
	set, err, _ := s.loads.Do(strconv.FormatUint(uint64(index), 10), func() (any, error) {
		set, err := guardiansets.Get(s.db, index)
		if err != nil {
			return nil, err
		}
		s.cache.Add(index, set)
		cachedSets.Set(float64(s.cache.Len()))
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return set.(*types.GuardianSet).Copy(), nil
}

// Latest returns the newest published set.
func (s *Store) Latest(ctx context.Context) (*types.GuardianSet, error) {
	index, err := guardiansets.Latest(s.db)
	if err != nil {
		return nil, err
	}
	return s.GuardianSet(ctx, index)
}
