package cmd

import (
	"fmt"
	"os"

	"github.com/tugrulsicakyuz/mobile-delivy/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "delivy",
	Short: "Food delivery backend services and client tools",
	Long: `delivy runs the order, chat and gateway services of the delivery platform and
ships client commands for logging in, ordering, chatting and courier work against them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		settings = loaded
		return config.SetupLogging(settings.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "logging level")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL for client commands")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("client.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Debugf("command failed: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
