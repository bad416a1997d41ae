package main

import (
	"fmt"

	"github.com/aretw0/novapay"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of novapay",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "novapay version %s\n", novapay.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
