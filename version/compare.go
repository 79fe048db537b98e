package version

import (
	"errors"
	"fmt"
	"time"
)

// Config selects the version token inside a build identifier and how to read it.
type Config struct {
	// Delimiter separates tokens in the build identifier. Must not be empty.
	Delimiter string
	// Position is the zero-based token index. Negative disables comparison.
	Position int
	// DateFormat is a Java-style date pattern, see CompileDateFormat.
	// Empty disables comparison.
	DateFormat string
}

// Validate reports why the config cannot be used for a comparison.
// The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	_, err := c.compile()
	return err
}

func (c Config) compile() (*DateFormat, error) {
	if c.Delimiter == "" {
		return nil, fmt.Errorf("%w: empty delimiter", ErrInvalidConfig)
	}
	if c.Position < 0 {
		return nil, fmt.Errorf("%w: position %d disables comparison", ErrInvalidConfig, c.Position)
	}
	if c.DateFormat == "" {
		return nil, fmt.Errorf("%w: no date format", ErrInvalidConfig)
	}
	format, err := CompileDateFormat(c.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return format, nil
}

// Diagnostics receives events about comparisons that could not be decided.
// Reporting never changes a verdict.
type Diagnostics interface {
	Info(msg string)
	Error(msg string, err error)
}

// Discard is a Diagnostics that drops every event.
var Discard Diagnostics = discard{}

type discard struct{}

func (discard) Info(string)         {}
func (discard) Error(string, error) {}

// Result is the outcome of one comparison.
type Result struct {
	// Newer is true only when both tokens parsed and the remote date is
	// strictly after the local date.
	Newer bool

	LocalToken  string
	RemoteToken string
	LocalDate   time.Time
	RemoteDate  time.Time

	// Err is nil when both dates were parsed, even if Newer is false.
	Err error
}

// Decided reports whether the verdict came from comparing two dates.
func (r Result) Decided() bool {
	return r.Err == nil
}

// Reason is a short human readable explanation of the verdict.
func (r Result) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Newer:
		return fmt.Sprintf("remote %s is newer than local %s", r.RemoteToken, r.LocalToken)
	case r.RemoteDate.Equal(r.LocalDate):
		return fmt.Sprintf("remote %s matches local %s", r.RemoteToken, r.LocalToken)
	default:
		return fmt.Sprintf("remote %s is older than local %s", r.RemoteToken, r.LocalToken)
	}
}

// Comparator compares build identifiers under a fixed Config. The date format
// is compiled once; a Comparator holds no mutable state and may be shared
// between goroutines.
type Comparator struct {
	cfg        Config
	format     *DateFormat
	compileErr error
	diag       Diagnostics
}

// NewComparator returns a Comparator for cfg. An invalid cfg is not an error
// here: every comparison made with it reports ErrInvalidConfig.
func NewComparator(cfg Config, diag Diagnostics) *Comparator {
	if diag == nil {
		diag = Discard
	}
	format, err := cfg.compile()
	return &Comparator{cfg: cfg, format: format, compileErr: err, diag: diag}
}

// IsNewer reports whether remote is a newer build than local.
func (c *Comparator) IsNewer(local, remote string) bool {
	return c.Compare(local, remote).Newer
}

// Compare decides whether remote postdates local. It never panics and never
// fails: anything that prevents a date comparison yields Newer == false with
// the cause in Result.Err.
func (c *Comparator) Compare(local, remote string) Result {
	c.diag.Info(fmt.Sprintf("local build: %q, remote build: %q", local, remote))

	if local == "" || remote == "" {
		return c.undecided(Result{}, fmt.Errorf("%w: local=%q remote=%q", ErrEmptyInput, local, remote))
	}
	if c.compileErr != nil {
		return c.undecided(Result{}, c.compileErr)
	}

	localTokens := Split(local, c.cfg.Delimiter)
	remoteTokens := Split(remote, c.cfg.Delimiter)
	pos := c.cfg.Position
	if pos >= len(localTokens) || pos >= len(remoteTokens) {
		return c.undecided(Result{}, fmt.Errorf("%w: position %d, local has %d tokens, remote has %d",
			ErrPositionOutOfRange, pos, len(localTokens), len(remoteTokens)))
	}

	res := Result{LocalToken: localTokens[pos], RemoteToken: remoteTokens[pos]}
	if res.LocalToken == "" || res.RemoteToken == "" {
		return c.undecided(res, fmt.Errorf("%w at position %d", ErrEmptyToken, pos))
	}

	var err error
	if res.LocalDate, err = c.format.Parse(res.LocalToken); err != nil {
		return c.undecided(res, fmt.Errorf("local build: %w", err))
	}
	if res.RemoteDate, err = c.format.Parse(res.RemoteToken); err != nil {
		return c.undecided(res, fmt.Errorf("remote build: %w", err))
	}

	res.Newer = res.RemoteDate.After(res.LocalDate)
	return res
}

func (c *Comparator) undecided(res Result, err error) Result {
	res.Newer = false
	res.Err = err
	if errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrUnparsableToken) {
		c.diag.Error("Unable to compare build versions", err)
	} else {
		c.diag.Info("Unable to compare build versions: " + err.Error())
	}
	return res
}

// Compare is a one-shot Comparator.Compare.
func Compare(local, remote string, cfg Config, diag Diagnostics) Result {
	return NewComparator(cfg, diag).Compare(local, remote)
}

// IsNewer is a one-shot Comparator.IsNewer.
func IsNewer(local, remote string, cfg Config, diag Diagnostics) bool {
	return Compare(local, remote, cfg, diag).Newer
}
