package cp

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Domain value limits. Bounds outside this range are rejected at variable
// construction so that interval widths and bound products of two domain
// values never overflow.
const (
	MinValue = math.MinInt32
	MaxValue = math.MaxInt32
)

// DefaultSparseLimit is the widest initial range for which a variable keeps an
// explicit sparse set and can therefore represent interior holes.
const DefaultSparseLimit = 1 << 16

// Config holds store configuration. A nil Logger or a non-positive
// SparseLimit falls back to the value of DefaultConfig. DefaultStrength is
// used as given, and its zero value is Weak, so start from DefaultConfig to
// post at Medium.
type Config struct {
	// Logger receives Debug-level traces of posts and failures.
	Logger logrus.FieldLogger

	// Metrics, when non-nil, exports propagation counters to Prometheus.
	Metrics *Metrics

	// DefaultStrength is used by Post.
	DefaultStrength Strength

	// SparseLimit bounds the range width of variables that track holes.
	SparseLimit int
}

// DefaultConfig returns the configuration used by NewStore.
func DefaultConfig() *Config {
	return &Config{
		Logger:          logrus.StandardLogger(),
		DefaultStrength: Medium,
		SparseLimit:     DefaultSparseLimit,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Logger == nil {
		out.Logger = def.Logger
	}
	if out.SparseLimit <= 0 {
		out.SparseLimit = def.SparseLimit
	}
	return &out
}

// debugEnabled reports whether Debug entries would be emitted, so that hot
// paths can skip building log fields.
func debugEnabled(l logrus.FieldLogger) bool {
	switch lg := l.(type) {
	case *logrus.Logger:
		return lg.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return lg.Logger.IsLevelEnabled(logrus.DebugLevel)
	default:
		return true
	}
}
