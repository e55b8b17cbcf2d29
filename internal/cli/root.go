// Package cli provides the brokerdesk command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/brokerdesk/internal/app"
	"github.com/five82/brokerdesk/internal/config"
)

// errNotSignedIn is returned by commands that need a session.
var errNotSignedIn = errors.New("not signed in; run \"brokerdesk login\" first")

// runner carries the global flags and the environment built from them. Each
// root command gets its own runner, so commands never share state.
type runner struct {
	configPath string
	prefsPath  string
	apiURL     string
	verbose    bool

	env *app.Env
}

// NewRootCmd creates the root command. Without a subcommand it opens the
// console.
func NewRootCmd(version string) *cobra.Command {
	cmd, _ := newRoot(version)
	return cmd
}

func newRoot(version string) (*cobra.Command, *runner) {
	r := &runner{}

	rootCmd := &cobra.Command{
		Use:   "brokerdesk",
		Short: "Back-office console for the brokerage API",
		Long: `brokerdesk is a terminal console for managing developers, properties,
affiliates, and sales encodings through the brokerage REST API.

Run without arguments to open the interactive console. The subcommands expose
the same screens, filters, and exports for scripting.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsBootstrap(cmd) {
				return nil
			}
			env, err := app.Bootstrap(app.Options{
				ConfigPath: r.configPath,
				PrefsPath:  r.prefsPath,
				APIURL:     r.apiURL,
				Verbose:    r.verbose,
				Version:    version,
			})
			if err != nil {
				return err
			}
			r.env = env
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runConsole(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&r.configPath, "config", "", "config file (default: ~/.config/brokerdesk/config.toml)")
	flags.StringVar(&r.prefsPath, "prefs", "", "preferences file (default: ~/.config/brokerdesk/prefs.toml)")
	flags.StringVar(&r.apiURL, "api-url", "", "API base URL (overrides config and "+config.EnvAPIURL+")")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newConsoleCommand(r),
		newLoginCommand(r),
		newLogoutCommand(r),
		newWhoamiCommand(r),
		newScreensCommand(r),
		newListCommand(r),
		newExportCommand(r),
		newDashboardCommand(r),
		newVersionCommand(version),
	)
	return rootCmd, r
}

// Execute runs the root command with ctx and flushes the log afterwards.
func Execute(ctx context.Context, version string) error {
	cmd, r := newRoot(version)
	defer r.close()
	return cmd.ExecuteContext(ctx)
}

func (r *runner) close() {
	r.env.Close()
}

func skipsBootstrap(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete", "version":
		return true
	}
	return false
}

func newConsoleCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"console"},
		Short:   "Open the interactive console",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runConsole(cmd)
		},
	}
}

func (r *runner) runConsole(cmd *cobra.Command) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("the console needs a terminal; use a subcommand such as \"list\" for scripting")
	}
	return app.RunConsole(cmd.Context(), r.env)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "brokerdesk %s\n", version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
