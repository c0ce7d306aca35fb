package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ledkb-setup/internal/config"
	"ledkb-setup/internal/executor"
	"ledkb-setup/internal/logger"
	"ledkb-setup/internal/profile"
	"ledkb-setup/internal/provision"
)

// version is set at build time with -ldflags "-X ledkb-setup/cmd.version=...".
var version = "dev"

// env holds everything the command takes from the process, so tests can run
// it against a fake runner and a temporary filesystem root.
type env struct {
	runner  executor.Runner
	console io.Writer
	stderr  io.Writer
	confirm profile.Confirmer
	now     func() time.Time
	getenv  func(string) string

	// root and statePath override the host defaults when set.
	root      string
	statePath string
}

func processEnv() env {
	return env{
		runner:  executor.NewLiveRunner(),
		console: color.Output,
		stderr:  color.Error,
		confirm: profile.TerminalConfirmer{},
		now:     time.Now,
		getenv:  os.Getenv,
	}
}

// options are the parsed command-line flags.
type options struct {
	dryRun        bool
	uninstall     bool
	debug         bool
	logFile       string
	repoDir       string
	configPath    string
	sourceArchive string
}

// newRootCmd builds the single ledkb-setup command. It has no subcommands:
// the flags select between install, uninstall and dry-run.
func newRootCmd(e env) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Install and configure g810-led keyboard lighting",
		Long: "Installs the g810-led keyboard utility (built from source on Arch and CachyOS,\n" +
			"packaged on Debian and Ubuntu), writes a static lighting profile and enables\n" +
			"the boot-time service that re-applies it.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), e, opts)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print the commands that would run without changing anything")
	f.BoolVar(&opts.uninstall, "uninstall", false, "Remove the tool, profile and service instead of installing")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging (also enabled by DEBUG=1)")
	f.StringVar(&opts.logFile, "log-file", "", "Append log lines to this file (default: $XDG_STATE_HOME/ledkb-setup/ledkb-setup.log)")
	f.StringVar(&opts.repoDir, "repo-dir", "", "Source checkout location for builds (default: $XDG_CACHE_HOME/ledkb-setup/src)")
	f.StringVarP(&opts.configPath, "config", "c", "", "Settings file, YAML or TOML (default: searched in XDG config dirs)")
	f.StringVar(&opts.sourceArchive, "source-archive", "", "Build from this archive (path or URL) instead of cloning")

	return rootCmd
}

func runSetup(ctx context.Context, e env, opts options) error {
	cfg, err := config.Build(config.Options{
		DryRun:        opts.dryRun,
		Uninstall:     opts.uninstall,
		Debug:         opts.debug || config.EnvEnabled(e.getenv("DEBUG")),
		LogPath:       opts.logFile,
		RepoDir:       opts.repoDir,
		SourceArchive: opts.sourceArchive,
		ConfigPath:    opts.configPath,
		StatePath:     e.statePath,
		Root:          e.root,
	})
	if err != nil {
		return err
	}

	closer, err := logger.Init(logger.Options{Debug: cfg.Debug, LogPath: cfg.LogPath, Console: e.console})
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Debug("log file: %s, repo dir: %s, settings: %q", cfg.LogPath, cfg.RepoDir, cfg.ConfigPath)

	ex := executor.New(e.runner, cfg.DryRun)
	sum, err := provision.New(cfg, ex, e.confirm, e.now).Run(ctx)
	provision.Report(sum, err, cfg.Settings.ServiceUnit)
	return err
}

// run executes the command with args and returns the process exit code.
func run(ctx context.Context, args []string, e env) int {
	rootCmd := newRootCmd(e)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(e.console)
	rootCmd.SetErr(e.stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the CLI against the real host and returns the exit code.
// SIGINT and SIGTERM cancel the run context; the running command is killed.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], processEnv())
}
