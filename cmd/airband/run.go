package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/internal/logging"
	"github.com/airband-io/airband/internal/presentation/tui"
	"github.com/airband-io/airband/pkg/adapters/file"
	"github.com/airband-io/airband/pkg/scoring"
	"github.com/airband-io/airband/pkg/session"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario-id]",
	Short: "Run an interactive practice session",
	Long:  `Starts a scenario in the terminal. Transmissions are played as text; type your readbacks at the prompt.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		plain, _ := cmd.Flags().GetBool("plain")
		verbose, _ := cmd.Flags().GetBool("verbose")

		source, err := file.New(dir)
		if err != nil {
			return fmt.Errorf("load scenarios from %q: %w", dir, err)
		}

		ctx := cmd.Context()
		scenarioID, err := pickScenario(ctx, source, args)
		if err != nil {
			return err
		}

		graph, err := source.LoadGraph(ctx, scenarioID)
		if err != nil {
			return err
		}

		logger := logging.NewNop()
		if verbose {
			logger = logging.New(slog.LevelDebug)
		}

		engine, err := airband.New(graph, source, airband.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("invalid scenario %q: %w", scenarioID, err)
		}

		runner := &airband.Runner{
			Input:     os.Stdin,
			Output:    os.Stdout,
			Validator: &scoring.SimpleValidator{},
			SessionID: session.NewID(),
		}

		interactive := !plain && term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
			runner.Speaker = tui.Speaker
		}

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return runner.Run(runCtx, engine)
	},
}

// pickScenario resolves the scenario to run: the argument when given, the
// only scenario when the directory holds exactly one, otherwise an error
// listing the choices.
func pickScenario(ctx context.Context, source *file.Source, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	ids, err := source.ListGraphs(ctx)
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no scenarios found")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("multiple scenarios available, pick one: %v", ids)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Disable colors and markdown rendering")
	runCmd.Flags().BoolP("verbose", "v", false, "Log engine transitions to stderr")

	// Make 'run' the default when no command is provided.
	rootCmd.RunE = runCmd.RunE
}
