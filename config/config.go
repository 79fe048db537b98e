package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ota-checker-go/internal"
	"ota-checker-go/version"

	"github.com/hashicorp/go-multierror"
)

const (
	// DefaultProfile is used when no profile is named and none can be detected.
	DefaultProfile = "default"

	appDirName = ".ota-checker"
)

// Property sources understood by the checker.
const (
	SourceGetprop   = "getprop"
	SourceBuildProp = "buildprop"
	SourceStatic    = "static"
)

// ProfileConfig holds the update-check settings for one device family or
// deployment.
type ProfileConfig struct {
	// Device properties
	BuildNameProp  string `json:"build_name_prop"`
	DeviceNameProp string `json:"device_name_prop"`
	PropertySource string `json:"property_source"`
	BuildPropPath  string `json:"build_prop_path"`
	GetpropPath    string `json:"getprop_path"`

	// Static overrides, used before any property source
	CurrentBuild string `json:"current_build"`
	DeviceName   string `json:"device_name"`

	// Manifest
	ReleaseType       string `json:"release_type"`
	ManifestURL       string `json:"manifest_url"`
	ManifestPublicKey string `json:"manifest_public_key"`
	S3Region          string `json:"s3_region"`
	S3Profile         string `json:"s3_profile"`

	// Static S3 keys, for buckets readable with a dedicated key pair. They
	// take precedence over s3_profile.
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3SessionToken    string `json:"s3_session_token"`

	// Version comparison
	Delimiter  string `json:"delimiter"`
	Position   *int   `json:"position"`
	DateFormat string `json:"date_format"`

	// Network and scheduling
	ConnectTimeoutSecs int    `json:"connect_timeout_secs"`
	ReadTimeoutSecs    int    `json:"read_timeout_secs"`
	CheckIntervalHrs   int    `json:"check_interval_hrs"`
	DownloadDir        string `json:"download_dir"`

	// Compatibility fields (old format)
	BuildName        string `json:"build_name"`
	DeviceNameKey    string `json:"device_name_key"`
	VersionDelimiter string `json:"version_delimiter"`
	VersionPosition  *int   `json:"version_position"`
	VersionFormat    string `json:"version_format"`
	OTAURL           string `json:"ota_url"`
}

// Comparison returns the comparator settings of the profile. An unset
// position disables comparison.
func (c *ProfileConfig) Comparison() version.Config {
	pos := -1
	if c.Position != nil {
		pos = *c.Position
	}
	return version.Config{
		Delimiter:  c.Delimiter,
		Position:   pos,
		DateFormat: c.DateFormat,
	}
}

// CheckInterval is the minimum time between two automatic checks.
func (c *ProfileConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalHrs) * time.Hour
}

// ConnectTimeout bounds connection setup for HTTP manifest and build downloads.
func (c *ProfileConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

// ReadTimeout bounds waiting for response data.
func (c *ProfileConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

// LoadConfig loads and validates the named profile. If path is empty the
// config file is searched for, see FindConfigFile.
func LoadConfig(path, profile string) (*ProfileConfig, error) {
	if path == "" {
		var err error
		path, err = FindConfigFile()
		if err != nil {
			return nil, err
		}
	}
	return loadConfigFromPath(path, profile)
}

func loadConfigFromPath(path, profile string) (*ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	internal.DebugPrint("Loading profile '%s' from %s", profile, path)
	return parseConfigData(data, profile)
}

// parseConfigData parses raw JSON config data and returns the profile config.
func parseConfigData(data []byte, profile string) (*ProfileConfig, error) {
	profiles, err := rawProfiles(data)
	if err != nil {
		return nil, err
	}

	profileData, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found in configuration", profile)
	}

	var cfg ProfileConfig
	if err := json.Unmarshal(profileData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse profile '%s': %w", profile, err)
	}

	applyCompatFields(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid profile '%s': %w", profile, err)
	}
	return &cfg, nil
}

// rawProfiles accepts both {"profiles": {"Name": {...}}} and the older flat
// {"Name": {...}} layout.
func rawProfiles(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, hasProfiles := raw["profiles"]; !hasProfiles {
		return raw, nil
	}

	var wrapper struct {
		Profiles map[string]json.RawMessage `json:"profiles"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return wrapper.Profiles, nil
}

// Map old field names to new ones
func applyCompatFields(cfg *ProfileConfig) {
	if cfg.BuildNameProp == "" && cfg.BuildName != "" {
		cfg.BuildNameProp = cfg.BuildName
	}
	if cfg.DeviceNameProp == "" && cfg.DeviceNameKey != "" {
		cfg.DeviceNameProp = cfg.DeviceNameKey
	}
	if cfg.Delimiter == "" && cfg.VersionDelimiter != "" {
		cfg.Delimiter = cfg.VersionDelimiter
	}
	if cfg.Position == nil && cfg.VersionPosition != nil {
		cfg.Position = cfg.VersionPosition
	}
	if cfg.DateFormat == "" && cfg.VersionFormat != "" {
		cfg.DateFormat = cfg.VersionFormat
	}
	if cfg.ManifestURL == "" && cfg.OTAURL != "" {
		cfg.ManifestURL = cfg.OTAURL
	}
}

func applyDefaults(cfg *ProfileConfig) {
	if cfg.BuildNameProp == "" {
		cfg.BuildNameProp = "ro.build.display.id"
	}
	if cfg.DeviceNameProp == "" {
		cfg.DeviceNameProp = "ro.product.device"
	}
	if cfg.PropertySource == "" {
		cfg.PropertySource = SourceGetprop
	}
	if cfg.ReleaseType == "" {
		cfg.ReleaseType = "stable"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = "-"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if cfg.ConnectTimeoutSecs == 0 {
		cfg.ConnectTimeoutSecs = 15
	}
	if cfg.ReadTimeoutSecs == 0 {
		cfg.ReadTimeoutSecs = 10
	}
	if cfg.CheckIntervalHrs == 0 {
		cfg.CheckIntervalHrs = 24
	}
	if cfg.DownloadDir == "" {
		if dir := StateDir(); dir != "" {
			cfg.DownloadDir = filepath.Join(dir, "downloads")
		}
	}
}

// validate checks the fields the checker cannot run without. Comparison
// settings are not checked here; an unusable comparison only disables update
// detection.
func validate(cfg *ProfileConfig) error {
	var result *multierror.Error

	if cfg.ManifestURL == "" {
		result = multierror.Append(result, fmt.Errorf("missing required configuration: manifest_url"))
	}

	switch cfg.PropertySource {
	case SourceGetprop, SourceBuildProp:
	case SourceStatic:
		if cfg.CurrentBuild == "" {
			result = multierror.Append(result, fmt.Errorf("property_source %q requires current_build", SourceStatic))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown property_source %q", cfg.PropertySource))
	}

	if (cfg.S3AccessKeyID == "") != (cfg.S3SecretAccessKey == "") {
		result = multierror.Append(result, fmt.Errorf("s3_access_key_id and s3_secret_access_key must be set together"))
	}

	if cfg.CheckIntervalHrs < 0 {
		result = multierror.Append(result, fmt.Errorf("check_interval_hrs must not be negative"))
	}
	if cfg.ConnectTimeoutSecs < 0 || cfg.ReadTimeoutSecs < 0 {
		result = multierror.Append(result, fmt.Errorf("timeouts must not be negative"))
	}

	return result.ErrorOrNil()
}

// ResolveProfile picks the profile name: explicit flag, then the
// OTA_CHECKER_PROFILE env var, then the only profile in the file, then
// DefaultProfile.
func ResolveProfile(flagValue, path string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("OTA_CHECKER_PROFILE"); env != "" {
		return env
	}
	if p := AutoDetectProfile(path); p != "" {
		return p
	}
	return DefaultProfile
}

// AutoDetectProfile returns the profile name when only one profile exists in
// the config file.
func AutoDetectProfile(path string) string {
	if path == "" {
		var err error
		if path, err = FindConfigFile(); err != nil {
			return ""
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return detectProfileFromData(data)
}

func detectProfileFromData(data []byte) string {
	profiles, err := rawProfiles(data)
	if err != nil {
		return ""
	}

	var names []string
	for name := range profiles {
		names = append(names, name)
	}

	if len(names) == 1 {
		internal.DebugPrint("Auto-detected profile: %s", names[0])
		return names[0]
	}
	if len(names) > 1 {
		internal.DebugPrint("Multiple profiles found: %v. Use --profile to specify.", names)
	}
	return ""
}

// FindConfigFile locates config.json: OTA_CHECKER_CONFIG, then next to the
// binary, then ~/.ota-checker/config.json.
func FindConfigFile() (string, error) {
	if p := os.Getenv("OTA_CHECKER_CONFIG"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file from OTA_CHECKER_CONFIG: %w", err)
		}
		return p, nil
	}

	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	dir := StateDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine home directory")
	}
	p := filepath.Join(dir, "config.json")
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("configuration file not found next to binary or in %s", dir)
}

// StateDir is where the checker keeps its config, state and downloads:
// OTA_CHECKER_HOME if set, otherwise ~/.ota-checker.
func StateDir() string {
	if dir := strings.TrimSpace(os.Getenv("OTA_CHECKER_HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, appDirName)
}
