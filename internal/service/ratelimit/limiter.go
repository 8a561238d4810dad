// Package ratelimit enforces the demo-mode daily usage ceilings. Usage is
// tracked per client fingerprint and globally, keyed by UTC day, in a
// single persisted JSON blob. Outside demo mode the limiter is inert.
package ratelimit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/internal/storage"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// usageKey is the fixed storage key the usage ledger is persisted under.
const usageKey = "rate_limit_usage"

// retentionDays bounds ledger growth: entries older than this are pruned
// on every write.
const retentionDays = 7

const dateLayout = "2006-01-02"

// Reason identifies which ceiling rejected a request.
type Reason string

// Ceilings, in the order they are checked.
const (
	ReasonPerFingerprint Reason = "per-fingerprint"
	ReasonGlobal         Reason = "global"
)

// Decision is the outcome of a limit check. Remaining is -1 when the
// limiter does not apply (non-demo mode).
type Decision struct {
	Allowed   bool
	Remaining int
	Reason    Reason
}

// Limiter checks and records demo-mode usage against a persistent ledger.
type Limiter struct {
	kv                  storage.Store
	perFingerprintDaily int
	globalDaily         int
	now                 func() time.Time
}

// New creates a Limiter over the given store.
func New(kv storage.Store, perFingerprintDaily, globalDaily int) *Limiter {
	return &Limiter{
		kv:                  kv,
		perFingerprintDaily: perFingerprintDaily,
		globalDaily:         globalDaily,
		now:                 time.Now,
	}
}

// CheckLimit decides whether a request may proceed. The per-fingerprint
// ceiling is checked before the global one; the first violated ceiling
// determines the reason.
func (l *Limiter) CheckLimit(mode models.Mode, fingerprint string) Decision {
	if mode != models.ModeDemo {
		return Decision{Allowed: true, Remaining: -1}
	}

	usage := l.load()
	today := l.today()

	used := usage.PerFingerprint[fingerprint][today]
	if used >= l.perFingerprintDaily {
		return Decision{Allowed: false, Remaining: 0, Reason: ReasonPerFingerprint}
	}

	if usage.Global[today] >= l.globalDaily {
		return Decision{Allowed: false, Remaining: 0, Reason: ReasonGlobal}
	}

	remaining := l.perFingerprintDaily - used
	if globalRemaining := l.globalDaily - usage.Global[today]; globalRemaining < remaining {
		remaining = globalRemaining
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// RecordUsage increments today's counters for the fingerprint. Only demo
// usage is metered.
func (l *Limiter) RecordUsage(mode models.Mode, fingerprint string) {
	if mode != models.ModeDemo {
		return
	}

	usage := l.load()
	today := l.today()

	if usage.PerFingerprint[fingerprint] == nil {
		usage.PerFingerprint[fingerprint] = make(map[string]int)
	}
	usage.PerFingerprint[fingerprint][today]++
	usage.Global[today]++

	l.prune(usage)
	l.persist(usage)
}

func (l *Limiter) today() string {
	return l.now().UTC().Format(dateLayout)
}

// prune drops ledger entries older than the retention window.
func (l *Limiter) prune(usage *models.RateLimitUsage) {
	cutoff := l.now().UTC().AddDate(0, 0, -retentionDays)

	stale := func(date string) bool {
		t, err := time.Parse(dateLayout, date)
		return err != nil || t.Before(cutoff)
	}

	for fp, days := range usage.PerFingerprint {
		for date := range days {
			if stale(date) {
				delete(days, date)
			}
		}
		if len(days) == 0 {
			delete(usage.PerFingerprint, fp)
		}
	}
	for date := range usage.Global {
		if stale(date) {
			delete(usage.Global, date)
		}
	}
}

// load reads the ledger; a missing, unreadable or corrupt blob yields a
// fresh one, so storage trouble never blocks a request.
func (l *Limiter) load() *models.RateLimitUsage {
	fresh := &models.RateLimitUsage{
		PerFingerprint: make(map[string]map[string]int),
		Global:         make(map[string]int),
	}

	raw, ok, err := l.kv.Get(usageKey)
	if err != nil {
		logger.Log.Warn("rate limit ledger unavailable", zap.Error(err))
		return fresh
	}
	if !ok {
		return fresh
	}

	var usage models.RateLimitUsage
	if err := json.Unmarshal([]byte(raw), &usage); err != nil {
		logger.Log.Warn("rate limit ledger corrupt, resetting", zap.Error(err))
		return fresh
	}
	if usage.PerFingerprint == nil {
		usage.PerFingerprint = make(map[string]map[string]int)
	}
	if usage.Global == nil {
		usage.Global = make(map[string]int)
	}
	return &usage
}

func (l *Limiter) persist(usage *models.RateLimitUsage) {
	raw, err := json.Marshal(usage)
	if err != nil {
		logger.Log.Warn("failed to serialize rate limit ledger", zap.Error(err))
		return
	}
	if err := l.kv.Set(usageKey, string(raw)); err != nil {
		logger.Log.Warn("failed to persist rate limit ledger", zap.Error(err))
	}
}

// SetClock overrides the limiter's clock. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}
