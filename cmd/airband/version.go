package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airband-io/airband"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the airband version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("airband version %s\n", airband.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
