package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/debounce"
	pkgerrors "github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/metrics"
)

// Store is the debounced writer over a blob backend. Reads are synchronous;
// writes are coalesced per key inside the debounce window and retried
// against storage failures before being dropped. Write failures never reach
// the engines: the in-memory state they already committed stays the source
// of truth.
type Store struct {
	blobs        Blobs
	logg         *logger.Logger
	metrics      *metrics.SyncMetrics
	window       time.Duration
	retryBudget  int
	writeTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*debounce.Debouncer
}

type StoreParams struct {
	Blobs   Blobs
	Config  config.PersistConfig
	Logger  *logger.Logger
	Metrics *metrics.SyncMetrics
}

func NewStore(params StoreParams) (*Store, error) {
	if params.Blobs == nil {
		return nil, fmt.Errorf("blob backend is required")
	}
	window := params.Config.DebounceWindow
	if window <= 0 {
		window = 150 * time.Millisecond
	}
	budget := params.Config.RetryBudget
	if budget <= 0 {
		budget = 3
	}
	writeTimeout := params.Config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Store{
		blobs:        params.Blobs,
		logg:         params.Logger,
		metrics:      params.Metrics,
		window:       window,
		retryBudget:  budget,
		writeTimeout: writeTimeout,
		writers:      make(map[string]*debounce.Debouncer),
	}, nil
}

// Load reads and parses the persisted array under key. Missing or corrupt
// blobs yield an empty result, never an error: a cart that cannot be read
// is an empty cart.
func (s *Store) Load(ctx context.Context, key string) []json.RawMessage {
	raw, err := s.blobs.Get(ctx, key)
	if err != nil {
		if err != ErrNoBlob && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", key), "local store read failed, starting empty")
		}
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", key), "discarding corrupt local blob")
		}
		return nil
	}
	return records
}

// Save serializes items now and schedules a debounced write. Rapid
// successive saves for the same key collapse into one write of the final
// snapshot.
func (s *Store) Save(key string, items any) {
	payload, err := json.Marshal(items)
	if err != nil {
		if s.logg != nil {
			ctx := s.logg.WithField(context.Background(), "key", key)
			s.logg.Error(ctx, "failed to serialize state for persistence", err)
		}
		return
	}

	writer := s.writerFor(key)
	if writer.Pending() {
		s.metrics.IncCoalesced(key)
	}
	writer.Schedule(func() {
		s.write(key, payload)
	})
}

// Flush forces any pending writes to run immediately. Called on shutdown.
func (s *Store) Flush() {
	s.mu.Lock()
	writers := make([]*debounce.Debouncer, 0, len(s.writers))
	for _, w := range s.writers {
		writers = append(writers, w)
	}
	s.mu.Unlock()

	for _, w := range writers {
		w.Flush()
	}
}

// Get exposes raw blob reads (used for the session token).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.blobs.Get(ctx, key)
}

// Set writes a raw blob synchronously, bypassing the debounce window.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.blobs.Set(ctx, key, value)
}

// Delete removes a raw blob synchronously.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.blobs.Delete(ctx, key)
}

func (s *Store) writerFor(key string) *debounce.Debouncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	writer, ok := s.writers[key]
	if !ok {
		writer = debounce.New(s.window)
		s.writers[key] = writer
	}
	return writer
}

func (s *Store) write(key string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= s.retryBudget; attempt++ {
		lastErr = s.blobs.Set(ctx, key, payload)
		if lastErr == nil {
			s.metrics.IncPersistWrite(key)
			return
		}
		// Quota-style failures: make room, then try the write again.
		if err := s.blobs.Delete(ctx, key); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", key), "failed to clear blob before retry")
		}
	}

	s.metrics.IncPersistFailure(key)
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"key": key, "attempts": s.retryBudget})
		s.logg.Error(lctx, "local persistence gave up",
			pkgerrors.Wrap(pkgerrors.CodePersistence, lastErr, "write blob"))
	}
}
