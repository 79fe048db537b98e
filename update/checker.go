// Package update decides whether a newer build is published for this device
// and fetches it.
package update

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ota-checker-go/config"
	"ota-checker-go/internal"
	"ota-checker-go/locking"
	"ota-checker-go/manifest"
	"ota-checker-go/props"
	"ota-checker-go/version"

	"github.com/spf13/afero"
)

const (
	checkLockName  = ".update-check.lock"
	checkLockStale = 5 * time.Minute
)

var (
	// ErrCooldown is returned by Run when the last check is too recent.
	ErrCooldown = errors.New("update check skipped: checked recently")
	// ErrLocked is returned by Run when another process is checking.
	ErrLocked = errors.New("update check skipped: another check is in progress")
)

// Result is the outcome of one update check.
type Result struct {
	Available   bool
	LocalBuild  string
	RemoteBuild string
	Device      string
	ReleaseType string

	// Entry is the manifest entry for the device, nil when none was found.
	Entry *manifest.Entry
	// Comparison is the comparator verdict. Zero when no entry was found.
	Comparison version.Result
	// Reason explains the verdict.
	Reason string
}

// Checker runs update checks for one profile.
type Checker struct {
	Profile     *config.ProfileConfig
	Device      *props.Device
	Opener      manifest.Opener
	Diagnostics version.Diagnostics
}

// NewChecker wires a Checker for cfg: device properties from the configured
// source and a fetcher honouring the profile's timeouts and S3 settings.
func NewChecker(cfg *config.ProfileConfig, fs afero.Fs, userAgent string) *Checker {
	return &Checker{
		Profile: cfg,
		Device:  NewDevice(cfg, fs),
		Opener: manifest.NewFetcher(manifest.Options{
			ConnectTimeout:    cfg.ConnectTimeout(),
			ReadTimeout:       cfg.ReadTimeout(),
			UserAgent:         userAgent,
			S3Region:          cfg.S3Region,
			S3Profile:         cfg.S3Profile,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3SessionToken:    cfg.S3SessionToken,
			Fs:                fs,
		}),
		Diagnostics: internal.Diagnostics{Prefix: "compare"},
	}
}

// NewDevice builds the property source for cfg. Static overrides from the
// profile win over the configured source.
func NewDevice(cfg *config.ProfileConfig, fs afero.Fs) *props.Device {
	overrides := props.Static{}
	if cfg.CurrentBuild != "" {
		overrides[cfg.BuildNameProp] = cfg.CurrentBuild
	}
	if cfg.DeviceName != "" {
		overrides[cfg.DeviceNameProp] = cfg.DeviceName
	}

	var src props.Source
	switch cfg.PropertySource {
	case config.SourceBuildProp:
		src = props.NewBuildProp(fs, cfg.BuildPropPath)
	case config.SourceGetprop:
		src = &props.Getprop{Binary: cfg.GetpropPath}
	}

	return props.NewDevice(props.Chain{overrides, src}, cfg.BuildNameProp, cfg.DeviceNameProp)
}

// Check compares the installed build with the one the manifest advertises for
// this device. Failing to load the manifest is an error; everything that
// prevents a comparison only yields a Result with Available == false.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	diag := c.Diagnostics
	if diag == nil {
		diag = version.Discard
	}

	res := &Result{
		LocalBuild:  c.Device.CurrentBuild(),
		Device:      c.Device.Name(),
		ReleaseType: c.Profile.ReleaseType,
	}

	if res.LocalBuild == "" {
		res.Reason = fmt.Sprintf("installed build unknown (property %s)", c.Device.BuildNameProp)
		diag.Info(res.Reason)
		return res, nil
	}
	if res.Device == "" {
		res.Reason = fmt.Sprintf("device name unknown (property %s)", c.Device.DeviceNameProp)
		diag.Info(res.Reason)
		return res, nil
	}

	m, err := manifest.Load(ctx, c.Opener, c.Profile.ManifestURL, c.Profile.ManifestPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	entry, ok := m.Find(res.ReleaseType, res.Device)
	if !ok {
		res.Reason = fmt.Sprintf("no %s build published for %s", res.ReleaseType, res.Device)
		diag.Info(res.Reason)
		internal.DebugPrint("Manifest release types: %s", strings.Join(m.ReleaseTypes(), ", "))
		return res, nil
	}
	res.Entry = &entry
	res.RemoteBuild = entry.Filename

	res.Comparison = version.Compare(res.LocalBuild, res.RemoteBuild, c.Profile.Comparison(), diag)
	res.Available = res.Comparison.Newer
	res.Reason = res.Comparison.Reason()
	return res, nil
}

// Run performs a check guarded by the cooldown and the cross-process check
// lock, and records the outcome in store. force skips the cooldown.
func (c *Checker) Run(ctx context.Context, store *StateStore, force bool) (*Result, error) {
	if !force && !store.ShouldCheck(c.Profile.CheckInterval()) {
		internal.DebugPrint("Last check at %s, within %s cooldown", store.LastCheckTime().Format(time.RFC3339), c.Profile.CheckInterval())
		return nil, ErrCooldown
	}

	if dir := store.Dir(); dir != "" {
		lockPath := filepath.Join(dir, checkLockName)
		if !locking.TryAcquire(store.fs, lockPath, checkLockStale) {
			internal.DebugPrint("Another process holds the update-check lock, skipping")
			return nil, ErrLocked
		}
		defer locking.Release(store.fs, lockPath)
	}

	res, err := c.Check(ctx)
	if err != nil {
		internal.DebugPrint("Update check failed: %v", err)
		store.RecordError(ErrorManifest)
		return nil, err
	}

	store.RecordCheck(res)
	if res.Available {
		internal.DebugPrint("New build available: %s (current: %s)", res.RemoteBuild, res.LocalBuild)
	} else {
		internal.DebugPrint("No update: %s", res.Reason)
	}
	return res, nil
}
