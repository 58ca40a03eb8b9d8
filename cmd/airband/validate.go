package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/pkg/adapters/file"
	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check scenario graphs for consistency",
	Long:  `Parses every scenario document in the directory and reports structural defects: dangling edges, duplicate ids, malformed content, and unreachable nodes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if len(args) > 0 {
			dir = args[0]
		}

		source, err := file.New(dir)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ids, err := source.ListGraphs(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no scenarios found in %q", dir)
		}

		failed := 0
		for _, id := range ids {
			graph, err := source.LoadGraph(ctx, id)
			if err != nil {
				fmt.Printf("✗ %s: %v\n", id, err)
				failed++
				continue
			}
			engine, err := airband.New(graph, source)
			if err != nil {
				fmt.Printf("✗ %s: %v\n", id, err)
				failed++
				continue
			}
			if missing := missingTransmissionRefs(ctx, graph, source); len(missing) > 0 {
				for _, ref := range missing {
					fmt.Printf("✗ %s: node %q references unknown transmission %q\n", id, ref.nodeID, ref.transmissionID)
				}
				failed++
				continue
			}
			report := engine.Report()
			for _, nodeID := range report.Unreachable {
				fmt.Printf("  %s: warning: unreachable node %q\n", id, nodeID)
			}
			for _, warning := range report.Warnings {
				fmt.Printf("  %s: warning: %s\n", id, warning)
			}
			fmt.Printf("✓ %s\n", id)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios invalid", failed, len(ids))
		}
		return nil
	},
}

type danglingRef struct {
	nodeID         string
	transmissionID string
}

// missingTransmissionRefs probes every transmission reference in the graph
// against the source. The engine tolerates late-loading transmissions at
// runtime, but for authored documents a missing id is a typo.
func missingTransmissionRefs(ctx context.Context, graph *domain.Graph, source ports.TransmissionSource) []danglingRef {
	var missing []danglingRef
	for _, node := range graph.Nodes {
		var ref string
		switch content := node.Content.(type) {
		case domain.TransmissionContent:
			ref = content.TransmissionID
		case domain.UserResponseContent:
			ref = content.ExpectedTransmissionID
		default:
			continue
		}
		if ref == "" {
			continue
		}
		if _, err := source.Transmission(ctx, ref); err != nil {
			missing = append(missing, danglingRef{nodeID: node.ID, transmissionID: ref})
		}
	}
	return missing
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
