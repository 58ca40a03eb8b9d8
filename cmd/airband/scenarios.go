package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airband-io/airband/pkg/adapters/file"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List scenarios in the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		source, err := file.New(dir)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ids, err := source.ListGraphs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			graph, err := source.LoadGraph(ctx, id)
			if err != nil {
				return err
			}
			name := graph.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%s\t%s\t%d nodes\n", id, name, len(graph.Nodes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
