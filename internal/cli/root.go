package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/session"
)

// Version is stamped at build time
var Version = "dev"

// Options customizes the root command. Zero values use the process
// environment.
type Options struct {
	// Getenv reads environment variables
	Getenv func(string) string
	// NewApp builds the client from the resolved configuration
	NewApp func(factory.Config) (*factory.App, error)
}

// flagValues holds raw persistent flag values before precedence is applied
type flagValues struct {
	configPath   string
	serverURL    string
	token        string
	tokenFile    string
	store        string
	redisURL     string
	pollInterval string
	output       string
	verbose      bool
}

// runner carries the resolved configuration to every subcommand
type runner struct {
	opts   Options
	flags  flagValues
	cfg    *Config
	logger *slog.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithOptions(Options{})
}

// NewRootCmdWithOptions creates the root command with injected dependencies
func NewRootCmdWithOptions(opts Options) *cobra.Command {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.NewApp == nil {
		opts.NewApp = factory.New
	}
	r := &runner{opts: opts, cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "sovereign",
		Short: "Terminal client for Sovereign Conquest",
		Long: `sovereign is a terminal client for the Sovereign Conquest space-trading game.

Log in once and the session token is kept between runs. Game commands such as
"MOVE 12" or "TRADE BUY ORE 50" can be sent one at a time with "sovereign cmd",
or interactively with "sovereign play".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.resolve(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "Config file (env: "+EnvConfig+", default "+DefaultConfigPath+")")
	pf.StringVar(&r.flags.serverURL, "server", defaults.ServerURL, "Server URL (env: "+EnvServer+")")
	pf.StringVar(&r.flags.token, "token", "", "Session token, kept in memory only (env: "+EnvToken+")")
	pf.StringVar(&r.flags.tokenFile, "token-file", defaults.TokenFile, "Token file path (env: "+EnvTokenFile+")")
	pf.StringVar(&r.flags.store, "store", defaults.Store, "Token store: file, redis, memory (env: "+EnvStore+")")
	pf.StringVar(&r.flags.redisURL, "redis-url", "", "Redis URL for the redis store (env: "+EnvRedisURL+")")
	pf.StringVar(&r.flags.pollInterval, "poll-interval", defaults.PollInterval.String(), "Unread poll interval (env: "+EnvPollInterval+")")
	pf.StringVarP(&r.flags.output, "output", "o", defaults.Output, "Output format: text, json")
	pf.BoolVarP(&r.flags.verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd(r))
	rootCmd.AddCommand(newRegisterCmd(r))
	rootCmd.AddCommand(newLogoutCmd(r))
	rootCmd.AddCommand(newPasswdCmd(r))
	rootCmd.AddCommand(newStateCmd(r))
	rootCmd.AddCommand(newCmdCmd(r))
	rootCmd.AddCommand(newMessagesCmd(r))
	rootCmd.AddCommand(newUnreadCmd(r))
	rootCmd.AddCommand(newAdminCmd(r))
	rootCmd.AddCommand(newHealthCmd(r))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPlayCmd(r))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		NewOutput(outputFormat(rootCmd), os.Stderr).PrintError(err)
		os.Exit(1)
	}
}

func outputFormat(cmd *cobra.Command) string {
	if f := cmd.PersistentFlags().Lookup("output"); f != nil {
		return f.Value.String()
	}
	return "text"
}

// resolve layers defaults, the config file, the environment and flags
func (r *runner) resolve(cmd *cobra.Command) error {
	cfg := DefaultConfig()

	configPath := DefaultConfigPath
	if p := r.opts.Getenv(EnvConfig); p != "" {
		configPath = p
	}
	if cmd.Flags().Changed("config") {
		configPath = r.flags.configPath
	}
	if err := cfg.LoadFile(configPath); err != nil {
		return err
	}
	if err := cfg.LoadEnv(r.opts.Getenv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = r.flags.serverURL
	}
	if flags.Changed("token") {
		cfg.Token = r.flags.token
	}
	if flags.Changed("token-file") {
		cfg.TokenFile = r.flags.tokenFile
	}
	if flags.Changed("store") {
		cfg.Store = r.flags.store
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = r.flags.redisURL
	}
	if flags.Changed("poll-interval") {
		if err := setDuration(&cfg.PollInterval, r.flags.pollInterval, "--poll-interval"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		cfg.Output = r.flags.output
	}
	cfg.Verbose = r.flags.verbose
	if cfg.Output != "text" && cfg.Output != "json" {
		return fmt.Errorf("invalid output format %q: want text or json", cfg.Output)
	}

	r.cfg = cfg
	r.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (r *runner) out(cmd *cobra.Command) *Output {
	return NewOutput(r.cfg.Output, cmd.OutOrStdout())
}

// withApp builds the client for one command and releases it afterwards
func (r *runner) withApp(fn func(app *factory.App) error) error {
	fc, err := r.cfg.FactoryConfig()
	if err != nil {
		return err
	}
	fc.Logger = r.logger

	app, err := r.opts.NewApp(fc)
	if err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			r.logger.Warn("failed to close client", "error", err)
		}
	}()
	return fn(app)
}

// withSession is withApp for commands that need a resumed session. Only
// passwd runs while a password change is pending.
func (r *runner) withSession(ctx context.Context, allowPasswordChange bool, fn func(app *factory.App) error) error {
	return r.withApp(func(app *factory.App) error {
		ok, err := app.Session.Resume(ctx)
		if err != nil {
			return fmt.Errorf("%w; log in again with `sovereign login`", err)
		}
		if !ok {
			return fmt.Errorf("%w: run `sovereign login` first", model.ErrNotAuthenticated)
		}
		if app.Session.State() == session.PasswordChangeRequired && !allowPasswordChange {
			return fmt.Errorf("%w: run `sovereign passwd` first", model.ErrPasswordChangeRequired)
		}
		return fn(app)
	})
}

func accountResult(app *factory.App) AccountResult {
	res := AccountResult{State: app.Session.State().String()}
	if st, ok := app.View.State(); ok {
		res.Username = st.Username
		res.MustChangePassword = st.MustChangePassword
	}
	return res
}
