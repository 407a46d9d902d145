// Package catalog holds the in-memory index of known phone model names.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
)

// ErrNotLoaded is returned by Current before the first successful load.
var ErrNotLoaded = errors.New("catalog not loaded")

// NameSource lists every model name in the backing store.
type NameSource interface {
	ListModelNames(ctx context.Context) ([]string, error)
}

// Snapshot is an immutable, ordered set of model names. Safe for concurrent reads.
type Snapshot struct {
	names       []string
	version     int64
	fingerprint string
	loadedAt    time.Time
}

// NewSnapshot builds a snapshot from names, dropping duplicates and keeping first-seen order.
func NewSnapshot(names []string, version int64) *Snapshot {
	seen := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ordered = append(ordered, n)
	}
	h := sha256.New()
	for _, n := range ordered {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}

	return &Snapshot{
		names:       ordered,
		version:     version,
		fingerprint: hex.EncodeToString(h.Sum(nil)[:8]),
		loadedAt:    time.Now(),
	}
}

// Names returns a copy of the model names in catalog order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of names.
func (s *Snapshot) Len() int { return len(s.names) }

// Version increases by one on every successful reload.
func (s *Snapshot) Version() int64 { return s.version }

// Fingerprint identifies the name set. Equal name lists give equal fingerprints
// across processes, unlike Version.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Index owns the current snapshot and replaces it on Reload.
type Index struct {
	source  NameSource
	logger  *observability.Logger
	current atomic.Pointer[Snapshot]

	reloadMu sync.Mutex
}

// NewIndex creates an index. Call Reload before serving.
func NewIndex(source NameSource, logger *observability.Logger) *Index {
	return &Index{source: source, logger: logger}
}

// Load builds the first snapshot. A failure here is meant to abort startup.
func Load(ctx context.Context, source NameSource, logger *observability.Logger) (*Index, error) {
	idx := NewIndex(source, logger)
	if _, err := idx.Reload(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// Reload fetches names from the source and swaps in a new snapshot.
// On error the previous snapshot stays in place.
func (i *Index) Reload(ctx context.Context) (*Snapshot, error) {
	i.reloadMu.Lock()
	defer i.reloadMu.Unlock()

	start := time.Now()
	names, err := i.source.ListModelNames(ctx)
	if err != nil {
		i.logger.Error().Err(err).Msg("Catalog reload failed")
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var version int64 = 1
	if prev := i.current.Load(); prev != nil {
		version = prev.version + 1
	}

	snap := NewSnapshot(names, version)
	i.current.Store(snap)

	i.logger.Info().
		Int("models", snap.Len()).
		Int64("version", version).
		Dur("took", time.Since(start)).
		Msg("Catalog loaded")

	return snap, nil
}

// Current returns the active snapshot.
func (i *Index) Current() (*Snapshot, error) {
	snap := i.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}
