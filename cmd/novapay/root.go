package main

import (
	"fmt"
	"os"

	"github.com/aretw0/novapay/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "novapay",
	Short: "NovaPay wizard engine",
	Long: `NovaPay drives the Send Money, Loan Apply, Register and Forgot Password
wizards, interactively in the terminal or as an HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./novapay.yaml or $HOME/.config/novapay/novapay.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", "", "session store: memory, redis, file")
	rootCmd.PersistentFlags().String("catalog", "", "YAML catalog overriding step labels")
	rootCmd.PersistentFlags().Duration("latency", 0, "simulated backend latency")
}

// loadConfig resolves the configuration for cmd: defaults, file, env, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(v, cfgFile); err != nil {
		return nil, err
	}

	flags := map[string]string{
		"log-level": "log.level",
		"store":     "store.driver",
		"catalog":   "catalog",
		"latency":   "simulate.latency",
		"addr":      "http.addr",
	}
	// Only flags the user typed override lower layers.
	for name := range flags {
		if f := cmd.Flags().Lookup(name); f == nil || !f.Changed {
			delete(flags, name)
		}
	}
	if err := config.BindFlags(v, cmd.Flags(), flags); err != nil {
		return nil, err
	}
	return config.Load(v)
}
