package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"ota-checker-go/config"
	"ota-checker-go/internal"
	"ota-checker-go/ui"

	"github.com/spf13/cobra"
)

const appVersion = "1.0.0"

// Returned by `check --exit-code` when a newer build is published.
const exitUpdateAvailable = 10

// exitCodeError ends the command with a specific exit status and no message.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	profile    string
	configPath string
	debug      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	internal.InitDebug()
	defer internal.CloseDebug()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ec exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	ui.PrintError(stderr, "Error: "+err.Error())
	internal.LogError(strings.TrimSpace(root.Name()+" "+strings.Join(args, " ")), err)
	return 1
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ota-checker",
		Short: "Check whether a newer OTA build is published for this device",
		Long: `ota-checker compares the installed build with the latest build in the
release manifest. Builds are compared by the date embedded in their name.

Without a subcommand it runs "check".`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				internal.Debug = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, checkOptions{})
		},
	}

	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Configuration profile to use")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json (default: $OTA_CHECKER_CONFIG, next to the binary, or ~/.ota-checker/config.json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Write debug output to stderr or $OTA_CHECKER_LOG_FILE")

	root.AddCommand(
		newCheckCmd(opts),
		newCompareCmd(opts),
		newPropsCmd(opts),
		newDownloadCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadProfile resolves the profile name and loads its configuration.
func loadProfile(opts *globalOptions) (*config.ProfileConfig, string, error) {
	profile := config.ResolveProfile(opts.profile, opts.configPath)
	cfg, err := config.LoadConfig(opts.configPath, profile)
	if err != nil {
		return nil, profile, err
	}
	return cfg, profile, nil
}

func userAgent() string {
	return "ota-checker/" + appVersion
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ota-checker %s\n", appVersion)
		},
	}
}
