package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/cache"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/catalog"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

// ErrUpstreamUnavailable wraps record store failures that happen mid-request.
var ErrUpstreamUnavailable = errors.New("phone store unavailable")

const answerCachePrefix = "answer:"

// PhoneStore is the record lookup the router depends on.
type PhoneStore interface {
	GetByModelName(ctx context.Context, modelName string) (*storage.Phone, error)
	ListAll(ctx context.Context) ([]*storage.Phone, error)
}

// Answer is the composed reply to one question.
type Answer struct {
	Text   string
	Intent Intent
	Cached bool
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	MatchCutoff  float64
	CacheAnswers bool
	CacheTTL     time.Duration
	// Classify overrides the keyword classifier. Defaults to ClassifyIntent.
	Classify func(question string) Intent
}

// Router classifies questions and dispatches them to the per-intent composers.
type Router struct {
	logger   *observability.Logger
	store    PhoneStore
	cache    cache.Client
	matcher  *Matcher
	classify func(string) Intent
	config   RouterConfig
}

// NewRouter creates a new question router. cacheClient may be nil.
func NewRouter(logger *observability.Logger, store PhoneStore, cacheClient cache.Client, cfg RouterConfig) *Router {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	classify := cfg.Classify
	if classify == nil {
		classify = ClassifyIntent
	}

	return &Router{
		logger:   logger,
		store:    store,
		cache:    cacheClient,
		matcher:  NewMatcher(cfg.MatchCutoff),
		classify: classify,
		config:   cfg,
	}
}

// Answer composes the reply to question against the given catalog snapshot.
// Matching, extraction and empty results all come back as text; the only error
// is ErrUpstreamUnavailable when the record store fails.
func (r *Router) Answer(ctx context.Context, snap *catalog.Snapshot, question string) (*Answer, error) {
	start := time.Now()
	q := strings.TrimSpace(question)
	intent := r.classify(q)
	logger := r.logger.WithContext(ctx).With().
		Str("intent", string(intent)).
		Int("question_len", len(q)).
		Logger()

	useCache := r.config.CacheAnswers && r.cache != nil
	var key string
	if useCache {
		key = r.cacheKey(snap, q)
		if hit, err := r.cache.Get(ctx, key); err == nil {
			logger.Debug().Msg("Answer cache hit")
			return &Answer{Text: string(hit), Intent: intent, Cached: true}, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("Answer cache read failed")
		}
	}

	var (
		text string
		err  error
	)
	switch intent {
	case IntentSpecs:
		text, err = r.answerSpecs(ctx, snap, q)
	case IntentCompare:
		text, err = r.answerCompare(ctx, snap, q)
	case IntentBestBatteryUnderBudget:
		text, err = r.answerBestBattery(ctx, q)
	default:
		text = MsgHelp
	}
	if err != nil {
		logger.Error().Err(err).Msg("Answer failed")
		return nil, err
	}

	if useCache {
		if err := r.cache.Set(ctx, key, []byte(text), r.config.CacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Answer cache write failed")
		}
	}

	logger.Info().
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("Question answered")

	return &Answer{Text: text, Intent: intent}, nil
}

// InvalidateCache drops every cached answer.
func (r *Router) InvalidateCache(ctx context.Context) error {
	return InvalidateAnswers(ctx, r.cache)
}

// InvalidateAnswers drops every answer cached in c. Call it after the record
// store changes so no router serves answers composed from old records.
func InvalidateAnswers(ctx context.Context, c cache.Client) error {
	if c == nil {
		return nil
	}
	return c.DeleteByPrefix(ctx, answerCachePrefix)
}

func (r *Router) answerSpecs(ctx context.Context, snap *catalog.Snapshot, q string) (string, error) {
	fragment := strings.ReplaceAll(q, "specs of", "")
	fragment = strings.ReplaceAll(fragment, "Specs of", "")

	name, ok := r.matcher.Match(fragment, snap.Names())
	if !ok {
		return MsgModelNotFound, nil
	}

	phone, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if phone == nil {
		return MsgModelNotFound, nil
	}
	return FormatSpecs(phone), nil
}

func (r *Router) answerCompare(ctx context.Context, snap *catalog.Snapshot, q string) (string, error) {
	left, right, ok := splitComparison(q)
	if !ok {
		return MsgCompareUsage, nil
	}

	names := snap.Names()
	name1, ok1 := r.matcher.Match(left, names)
	name2, ok2 := r.matcher.Match(right, names)
	if !ok1 || !ok2 {
		return MsgCompareNoMatch, nil
	}

	p1, err := r.lookup(ctx, name1)
	if err != nil {
		return "", err
	}
	p2, err := r.lookup(ctx, name2)
	if err != nil {
		return "", err
	}
	if p1 == nil || p2 == nil {
		return MsgCompareLoadFailed, nil
	}

	return FormatCompareAnswer(p1, p2, DetectFocus(q)), nil
}

func (r *Router) answerBestBattery(ctx context.Context, q string) (string, error) {
	budget, ok := ExtractBudget(q)
	if !ok {
		return MsgBudgetUsage, nil
	}

	phones, err := r.store.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	best := BestBatteryUnder(phones, budget)
	if best == nil {
		return MsgNoPhonesUnderBudget, nil
	}
	return FormatBestBattery(budget, best), nil
}

// lookup returns nil without error when the record is gone.
func (r *Router) lookup(ctx context.Context, name string) (*storage.Phone, error) {
	phone, err := r.store.GetByModelName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return phone, nil
}

// splitComparison splits on the first " vs ", else the first " and ", and strips
// the leading "compare" keyword from the left side.
func splitComparison(q string) (string, string, bool) {
	var left, right string
	var found bool
	if left, right, found = strings.Cut(q, " vs "); !found {
		if left, right, found = strings.Cut(q, " and "); !found {
			return "", "", false
		}
	}

	left = strings.ReplaceAll(left, "compare", "")
	left = strings.ReplaceAll(left, "Compare", "")
	return strings.TrimSpace(left), strings.TrimSpace(right), true
}

func (r *Router) cacheKey(snap *catalog.Snapshot, q string) string {
	sum := sha256.Sum256([]byte(q))
	return answerCachePrefix + cache.CacheKey(snap.Fingerprint(), hex.EncodeToString(sum[:16]))
}
