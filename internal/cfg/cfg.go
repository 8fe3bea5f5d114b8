package cfg

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

// Config holds CarePath application settings. It follows the
// RegisterFlags/Validate convention of the go-core config packages.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	SessionTTLMinutes     int
	APIToken              string
	ClassifyRPS           float64
	ClassifyBurst         int
	SecureCookies         bool
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 15, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 30, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "web listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for outcome tallies (empty = in-memory)")
	fs.IntVar(&c.SessionTTLMinutes, "session-ttl-minutes", 30, "minutes an idle assessment is kept before it is discarded (1..1440)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token for /api/v1/outcomes (empty = route disabled)")
	fs.Float64Var(&c.ClassifyRPS, "classify-rps", 2, "sustained requests per second per client on /api/v1/classify")
	fs.IntVar(&c.ClassifyBurst, "classify-burst", 10, "burst size per client on /api/v1/classify")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", true, "mark cookies Secure (disable only for plain-http local dev)")
}

// SessionTTL returns the idle assessment lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.SessionTTLMinutes <= 0 || c.SessionTTLMinutes > 1440 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL_MINUTES %d (must be 1..1440)", c.SessionTTLMinutes))
	}

	if c.ClassifyRPS <= 0 {
		errs = append(errs, fmt.Errorf("invalid CLASSIFY_RPS %g (must be > 0)", c.ClassifyRPS))
	}
	if c.ClassifyBurst <= 0 {
		errs = append(errs, fmt.Errorf("invalid CLASSIFY_BURST %d (must be > 0)", c.ClassifyBurst))
	}

	// a short token on an admin route is worse than none
	if c.APIToken != "" && len(c.APIToken) < 16 {
		errs = append(errs, errors.New("API_TOKEN must be at least 16 characters when set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
