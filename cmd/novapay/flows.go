package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Inspect the available wizards",
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wizards and their steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app, closeStore, err := newApp(cfg, logging.NewNop())
		if err != nil {
			return err
		}
		defer closeStore()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTITLE\tSTEPS")
		for _, def := range app.Registry.Definitions() {
			labels := ""
			for i, step := range def.Steps() {
				if i > 0 {
					labels += " › "
				}
				labels += step.Label
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name(), app.Title(def.Name()), labels)
		}
		return w.Flush()
	},
}

var flowsGraphCmd = &cobra.Command{
	Use:   "graph <flow>",
	Short: "Print a wizard as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app, closeStore, err := newApp(cfg, logging.NewNop())
		if err != nil {
			return err
		}
		defer closeStore()

		def, err := app.Registry.Get(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			state, err := app.Sessions.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			overlay = graph.OverlayFromState(def, state)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	flowsCmd.AddCommand(flowsListCmd, flowsGraphCmd)
	flowsGraphCmd.Flags().String("session", "", "highlight the progress of a session")
}
