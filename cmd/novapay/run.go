package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/novapay/internal/cli"
	"github.com/aretw0/novapay/internal/config"
	"github.com/aretw0/novapay/internal/presentation/tui"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Walk through a wizard in the terminal",
	Long: `Runs a wizard interactively. Type :back, :jump N, :reset, :cancel or :quit at any
prompt. With --session an earlier session is resumed where it stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		if len(args) == 0 && sessionID == "" {
			return errors.New("name a flow or pass --session")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		app, closeStore, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := []cli.Option{
			cli.WithLogger(logger),
			cli.WithMaxInputSize(cfg.Input.MaxSize),
		}
		if plain {
			opts = append(opts, cli.WithPlainOutput())
		} else {
			tui.PrintBanner(os.Stdout)
		}
		runner := cli.NewRunner(app.Sessions, opts...)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		var state *domain.State
		if sessionID != "" {
			state, err = runner.Run(sigCtx, sessionID)
		} else {
			state, err = runner.Start(sigCtx, args[0])
		}

		switch {
		case errors.Is(err, cli.ErrQuit):
			fmt.Fprintln(cmd.OutOrStdout(), quitMessage(cfg.Store, state))
			return nil
		case sigCtx.Signal() != nil:
			fmt.Printf("\n>>> Interrupted (%v).\n", sigCtx.Signal())
			return nil
		}
		return err
	},
}

// quitMessage tells the user whether the session can be resumed later.
func quitMessage(store config.StoreConfig, state *domain.State) string {
	if !store.Persistent() || state == nil {
		return ">>> Session closed. In-memory sessions end with the process."
	}
	return fmt.Sprintf(">>> Session saved. Resume with: novapay run --session %s", state.SessionID)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "resume an existing session")
	runCmd.Flags().Bool("plain", false, "no colors, no banner")
}
