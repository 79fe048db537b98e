package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"ota-checker-go/config"
	"ota-checker-go/internal"
	"ota-checker-go/manifest"
	"ota-checker-go/ui"
	"ota-checker-go/update"
	"ota-checker-go/version"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	force    bool
	open     bool
	json     bool
	exitCode bool
}

// checkOutput is the --json form of a check.
type checkOutput struct {
	Profile         string `json:"profile"`
	UpdateAvailable bool   `json:"update_available"`
	Skipped         bool   `json:"skipped,omitempty"`
	Device          string `json:"device,omitempty"`
	ReleaseType     string `json:"release_type,omitempty"`
	LocalBuild      string `json:"local_build,omitempty"`
	RemoteBuild     string `json:"remote_build,omitempty"`
	URL             string `json:"url,omitempty"`
	ChangelogURL    string `json:"changelog_url,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	copts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for a newer build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, copts)
		},
	}
	cmd.Flags().BoolVarP(&copts.force, "force", "f", false, "Check even if the last check is within the check interval")
	cmd.Flags().BoolVar(&copts.open, "open", false, "Open the download page when an update is available")
	cmd.Flags().BoolVar(&copts.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&copts.exitCode, "exit-code", false, fmt.Sprintf("Exit with status %d when an update is available", exitUpdateAvailable))
	return cmd
}

func runCheck(cmd *cobra.Command, opts *globalOptions, copts checkOptions) error {
	out := cmd.OutOrStdout()

	cfg, profile, err := loadProfile(opts)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	checker := update.NewChecker(cfg, fs, userAgent())
	checker.Diagnostics = internal.Diagnostics{Prefix: profile}
	store := update.NewStateStore(fs, config.StateDir())

	res, err := checker.Run(cmd.Context(), store, copts.force)
	if errors.Is(err, update.ErrCooldown) || errors.Is(err, update.ErrLocked) {
		if copts.json {
			return printJSON(out, checkOutput{Profile: profile, Skipped: true, Reason: err.Error()})
		}
		ui.PrintMuted(out, err.Error()+" (use --force to check now)")
		return nil
	}
	if err != nil {
		return err
	}

	if copts.json {
		if err := printJSON(out, toCheckOutput(profile, res)); err != nil {
			return err
		}
	} else {
		printCheckResult(out, res)
	}

	if !res.Available {
		return nil
	}
	if copts.open {
		if err := update.LaunchURL(launchTarget(res.Entry)); err != nil {
			ui.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("Could not open browser: %v", err))
		}
	}
	if copts.exitCode {
		return exitCodeError{code: exitUpdateAvailable}
	}
	return nil
}

func toCheckOutput(profile string, res *update.Result) checkOutput {
	o := checkOutput{
		Profile:         profile,
		UpdateAvailable: res.Available,
		Device:          res.Device,
		ReleaseType:     res.ReleaseType,
		LocalBuild:      res.LocalBuild,
		RemoteBuild:     res.RemoteBuild,
		Reason:          res.Reason,
	}
	if res.Entry != nil {
		o.URL = res.Entry.URL
		o.ChangelogURL = res.Entry.ChangelogURL
	}
	return o
}

func printCheckResult(w io.Writer, res *update.Result) {
	switch {
	case res.Available:
		ui.PrintInfo(w, "New build available: "+ui.Bold(res.RemoteBuild))
	case res.Entry == nil || res.Comparison.Err != nil:
		ui.PrintWarning(w, "Cannot tell whether an update is available: "+res.Reason)
	default:
		ui.PrintSuccess(w, "Up to date")
	}

	ui.PrintField(w, "Device", res.Device)
	ui.PrintField(w, "Release", res.ReleaseType)
	ui.PrintField(w, "Installed", res.LocalBuild)
	ui.PrintField(w, "Latest", res.RemoteBuild)
	if res.Available && res.Entry != nil {
		if res.Entry.URL != "" {
			ui.PrintField(w, "Download", res.Entry.URL)
		}
		if res.Entry.ChangelogURL != "" {
			ui.PrintField(w, "Changelog", res.Entry.ChangelogURL)
		}
	}
}

// launchTarget prefers the download URL and falls back to the changelog.
func launchTarget(e *manifest.Entry) string {
	if e == nil {
		return ""
	}
	if e.URL != "" {
		return e.URL
	}
	return e.ChangelogURL
}

type compareOptions struct {
	delimiter  string
	position   int
	dateFormat string
	verbose    bool
}

func newCompareCmd(opts *globalOptions) *cobra.Command {
	copts := compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare LOCAL REMOTE",
		Short: "Report whether build REMOTE is newer than build LOCAL",
		Long: `Compare two build identifiers by the date embedded in them and print
"true" if REMOTE is newer, "false" otherwise. Anything that prevents the
comparison prints "false".

Settings not given as flags are taken from the selected profile when a
configuration file is available.`,
		Example: `  ota-checker compare Slim-hammerhead-4.4.4.build.8.0-OFFICIAL-20150401-1200 \
    Slim-hammerhead-4.4.4.build.8.0-OFFICIAL-20150501-0930 --position 4 --date-format yyyyMMdd`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := compareConfig(cmd, opts, copts)
			res := version.Compare(args[0], args[1], cfg, internal.Diagnostics{Prefix: "compare"})
			fmt.Fprintln(cmd.OutOrStdout(), res.Newer)
			if copts.verbose {
				ui.PrintMuted(cmd.ErrOrStderr(), res.Reason())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&copts.delimiter, "delimiter", "d", "-", "Token delimiter")
	cmd.Flags().IntVarP(&copts.position, "position", "n", -1, "Zero-based index of the date token")
	cmd.Flags().StringVarP(&copts.dateFormat, "date-format", "F", "", "Date pattern of the token, e.g. yyyyMMdd")
	cmd.Flags().BoolVar(&copts.verbose, "verbose", false, "Explain the verdict on stderr")
	return cmd
}

// compareConfig starts from the profile's comparison settings, if a profile
// can be loaded, and applies the flags that were set.
func compareConfig(cmd *cobra.Command, opts *globalOptions, copts compareOptions) version.Config {
	cfg := version.Config{Delimiter: copts.delimiter, Position: copts.position, DateFormat: copts.dateFormat}

	flags := cmd.Flags()
	if flags.Changed("delimiter") && flags.Changed("position") && flags.Changed("date-format") {
		return cfg
	}

	profileCfg, _, err := loadProfile(opts)
	if err != nil {
		internal.DebugPrint("No profile for compare defaults: %v", err)
		return cfg
	}

	fromProfile := profileCfg.Comparison()
	if !flags.Changed("delimiter") {
		cfg.Delimiter = fromProfile.Delimiter
	}
	if !flags.Changed("position") {
		cfg.Position = fromProfile.Position
	}
	if !flags.Changed("date-format") {
		cfg.DateFormat = fromProfile.DateFormat
	}
	return cfg
}

func newPropsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "props [NAME...]",
		Short: "Print device properties as the checker sees them",
		Long: `Print the named properties from the profile's property source. Without
arguments, print the build name and device name properties.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadProfile(opts)
			if err != nil {
				return err
			}

			device := update.NewDevice(cfg, afero.NewOsFs())
			names := args
			if len(names) == 0 {
				names = []string{cfg.BuildNameProp, cfg.DeviceNameProp}
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "%s=%s\n", name, device.Lookup(strings.TrimSpace(name)))
			}
			return nil
		},
	}
}

func newDownloadCmd(opts *globalOptions) *cobra.Command {
	var force bool
	var dir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the latest build when it is newer than the installed one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, profile, err := loadProfile(opts)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.DownloadDir
			}

			fs := afero.NewOsFs()
			checker := update.NewChecker(cfg, fs, userAgent())
			checker.Diagnostics = internal.Diagnostics{Prefix: profile}
			store := update.NewStateStore(fs, config.StateDir())

			res, err := checker.Check(cmd.Context())
			if err != nil {
				store.RecordError(update.ErrorManifest)
				return err
			}
			store.RecordCheck(res)

			if res.Entry == nil {
				return fmt.Errorf("no build to download: %s", res.Reason)
			}
			if !res.Available && !force {
				ui.PrintSuccess(out, "Up to date, nothing to download ("+res.Reason+")")
				return nil
			}

			ui.PrintInfo(out, "Downloading "+res.Entry.Filename)
			path, err := update.Download(cmd.Context(), checker.Opener, fs, *res.Entry, dir)
			if err != nil {
				store.RecordError(update.ErrorDownload)
				return err
			}
			store.RecordDownload(path)

			ui.PrintSuccess(out, "Saved "+path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Download even if the published build is not newer")
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "Download directory (default: download_dir from the profile)")
	return cmd
}
