package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/kubeatlas-console/console"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/logging"
	"github.com/jrsteele09/kubeatlas-console/token/filestore"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string

	cfg config.Config
	app *console.Console
)

var rootCmd = &cobra.Command{
	Use:   "kubeatlasctl",
	Short: "KubeAtlas console from the command line",
	Long: `kubeatlasctl signs in to the KubeAtlas identity provider with a username
and password, keeps the session in a local credential file and talks to the
KubeAtlas backend API on your behalf.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		cfg = config.New()

		level := cfg.GetLogLevel()
		if logLevel != "" {
			level = logLevel
		}
		logger := logging.Init(level, cfg.GetEnv())

		store := filestore.New(cfg.GetCredentialFile(), cfg.GetAppName())
		c, err := console.NewFromConfig(cmd.Context(), cfg, store, nil, logger)
		if err != nil {
			return fmt.Errorf("failed to set up console: %w", err)
		}
		app = c
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
}

// requireLogin restores the stored session and loads the user behind it.
func requireLogin(cmd *cobra.Command) error {
	if err := app.Init(cmd.Context()); err != nil {
		return fmt.Errorf("%s", friendly(err))
	}
	if !app.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'kubeatlasctl login'")
	}
	return nil
}

func banner() {
	figure.NewFigure(cfg.GetAppName(), "cybermedium", true).Print()
	fmt.Println()
}
