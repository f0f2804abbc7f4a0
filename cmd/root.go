package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"campus-events/config"
	"campus-events/db"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "campus-events",
	Short: "Campus event registration, attendance and feedback API",
	Long: `campus-events serves the campus events API backed by a single SQLite file.
Running it without a subcommand starts the HTTP server.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: none, env CAMPUS_* and built-in defaults)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newLogger builds the process logger: JSON on stdout at the configured level.
func newLogger(level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func openStore(c config.Config) (*db.DB, error) {
	return db.NewDB(c.DB.Path,
		db.WithBusyTimeout(c.DB.BusyTimeout),
		db.WithNativeUpsert(c.Store.NativeUpsert),
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func bindFlag(c *cobra.Command, key, flag string) error {
	return viper.BindPFlag(key, c.Flags().Lookup(flag))
}
