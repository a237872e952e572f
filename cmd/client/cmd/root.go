package cmd

import (
	"fmt"
	"os"

	"github.com/DeepanKumar2553/neoshare/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	serverKey   = "server"
	nameKey     = "name"
	logLevelKey = "log_level"

	defaultServer = "ws://localhost:8080"
)

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neoshare",
	Short: "Talk to a peer through a neoshare relay",
	Long: `neoshare pairs two terminals through a relay server. One side opens a
room with "send" and shares the room code; the other joins it with "receive".
Every line typed on either side is delivered to the other.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(viper.GetString(logLevelKey))
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", defaultServer, "relay server URL")
	rootCmd.PersistentFlags().String("name", "", "name shown to your peer (defaults to your role)")
	rootCmd.PersistentFlags().String("log-level", "error", "log level: debug, info, warn or error")

	viper.BindPFlag(serverKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(nameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.BindPFlag(logLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetDefault(serverKey, defaultServer)
	viper.SetDefault(logLevelKey, "error")

	// NEOSHARE_SERVER, NEOSHARE_NAME, NEOSHARE_LOG_LEVEL
	viper.SetEnvPrefix("neoshare")
	viper.AutomaticEnv()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
