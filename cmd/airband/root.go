package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "airband",
	Short: "Airband is a radio phraseology trainer",
	Long:  `Airband runs interactive air traffic control scenarios: it plays transmissions, listens for your readbacks, and scores them against standard phraseology.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing scenario documents")
}
