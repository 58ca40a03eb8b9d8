package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airband-io/airband/internal/logging"
	"github.com/airband-io/airband/pkg/adapters/file"
	mcpAdapter "github.com/airband-io/airband/pkg/adapters/mcp"
	"github.com/airband-io/airband/pkg/adapters/memory"
	"github.com/airband-io/airband/pkg/scoring"
	"github.com/airband-io/airband/pkg/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Exposes scenarios as MCP tools so AI assistants can run practice sessions conversationally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		source, err := file.New(dir)
		if err != nil {
			return fmt.Errorf("load scenarios from %q: %w", dir, err)
		}

		server := mcpAdapter.NewServer(mcpAdapter.Host{
			Graphs:        source,
			Transmissions: source,
			Sessions:      session.NewManager(memory.NewStore()),
			Validator:     &scoring.SimpleValidator{},
			Logger:        logging.NewNop(),
		})
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
