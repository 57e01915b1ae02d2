package recurrence

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cyp0633/libical/internal/metrics"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// MaxYear ends every expansion once the anchor period passes it.
	MaxYear int
	// FloatingLocation places floating and DATE values on the time line.
	FloatingLocation *time.Location
	// MaxOccurrences caps what Between and Occurrences materialize (0 = unlimited).
	MaxOccurrences int

	// CacheTTL is how long HasOccurrenceInRange answers are kept. Zero
	// disables the cache.
	CacheTTL        time.Duration
	CacheMaxEntries int

	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	MaxYear:          9999,
	FloatingLocation: time.UTC,
	MaxOccurrences:   10000,
	CacheTTL:         15 * time.Minute,
	CacheMaxEntries:  1000,
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.MaxYear <= 0 {
		config.MaxYear = DefaultEngineConfig.MaxYear
	}
	if config.FloatingLocation == nil {
		config.FloatingLocation = time.UTC
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m, err := metrics.New(config.Registerer)
	if err != nil {
		config.Logger.Warn("metrics disabled", "error", err)
	}
	e := &Engine{
		config:  config,
		metrics: m,
	}
	if config.CacheTTL > 0 {
		if config.CacheMaxEntries <= 0 {
			config.CacheMaxEntries = DefaultEngineConfig.CacheMaxEntries
		}
		e.cache = newRangeCache(config.CacheTTL, config.CacheMaxEntries)
	}
	return e
}
