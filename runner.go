package airband

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
)

// Runner handles the interactive session loop using provided IO.
// This allows for easy testing and integration with different frontends
// (CLI, TUI, etc).
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Validator scores trainee responses. Required: without it a
	// user_response node cannot be crossed.
	Validator ports.ResponseValidator

	// Renderer transforms content before outputting it (markdown to ANSI).
	Renderer ContentRenderer

	// Speaker formats the "ATC:" prefix; defaults to plain text.
	Speaker func(label string, role domain.Role) string

	// Store, when set, persists the session after every transition.
	Store     ports.SessionStore
	SessionID string
}

// ContentRenderer is a function that transforms content before output.
type ContentRenderer func(string) (string, error)

// Run executes the session loop until the scenario completes or the trainee
// exits. Trainee commands: plain text answers radio calls, empty input
// acknowledges, "rewind <node>" returns to a visited node, "exit" quits.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if r.Validator == nil {
		return fmt.Errorf("validator must be set")
	}
	reader := bufio.NewReader(r.Input)

	session, view, err := r.loadOrStart(ctx, engine)
	if err != nil {
		return err
	}

	lastShownNode := ""
	for {
		if view.NodeID != lastShownNode || view.ChoicePending {
			r.display(view)
			lastShownNode = view.NodeID
		}

		if view.Complete {
			fmt.Fprintln(r.Output, "--- scenario complete ---")
			return r.save(ctx, session)
		}

		line, err := r.prompt(reader, view)
		if err != nil {
			if err == io.EOF {
				return r.save(ctx, session)
			}
			return fmt.Errorf("input error: %w", err)
		}

		if line == "exit" || line == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			return r.save(ctx, session)
		}
		if target, ok := strings.CutPrefix(line, "rewind "); ok {
			session, view, err = engine.Enter(ctx, session, strings.TrimSpace(target))
			if err != nil {
				fmt.Fprintf(r.Output, "cannot rewind: %v\n", err)
				continue
			}
			lastShownNode = ""
			if err := r.save(ctx, session); err != nil {
				return err
			}
			continue
		}

		session, view, err = r.step(ctx, engine, session, view, line)
		if err != nil {
			return err
		}
		if err := r.save(ctx, session); err != nil {
			return err
		}
	}
}

// step drives exactly one transition from the trainee's input.
func (r *Runner) step(ctx context.Context, engine *Engine, session *domain.Session, view *domain.View, line string) (*domain.Session, *domain.View, error) {
	switch {
	case view.AwaitingAck:
		return engine.Acknowledge(ctx, session)

	case view.AwaitingInput:
		if line == "" {
			return session, view, nil
		}
		next, _, req, err := engine.SubmitResponse(ctx, session, line)
		if err != nil {
			return session, view, err
		}
		// The terminal host is synchronous: evaluate inline and resolve.
		outcome, err := r.Validator.Evaluate(ctx, *req)
		if err != nil {
			return session, view, fmt.Errorf("validation failed: %w", err)
		}
		return engine.ResolveEvaluation(ctx, next, req.Ticket, outcome)

	case view.ChoicePending:
		if strings.EqualFold(line, "r") || strings.EqualFold(line, "retry") {
			return engine.Retry(ctx, session)
		}
		return engine.ContinueAfterResult(ctx, session)

	default:
		// Presenting: transmission data still loading; re-enter to retry.
		return engine.Enter(ctx, session, session.CurrentNodeID)
	}
}

func (r *Runner) display(view *domain.View) {
	if view.Text != "" {
		text := view.Text
		if r.Renderer != nil {
			if rendered, err := r.Renderer(text); err == nil {
				text = rendered
			}
		}
		if view.Speaker != "" {
			fmt.Fprintf(r.Output, "%s %s\n", r.speaker(view.Speaker, view.Role), strings.TrimSpace(text))
		} else {
			fmt.Fprintln(r.Output, strings.TrimSpace(text))
		}
	}
	for _, opt := range view.Options {
		fmt.Fprintf(r.Output, "  - %s\n", opt.Label)
	}
	if view.ChoicePending && view.Outcome != nil {
		verdict := "INCORRECT"
		if view.Outcome.IsCorrect {
			verdict = "CORRECT"
		}
		fmt.Fprintf(r.Output, "[%s] %s\n", verdict, view.Outcome.Feedback)
	}
}

func (r *Runner) prompt(reader *bufio.Reader, view *domain.View) (string, error) {
	switch {
	case view.AwaitingInput:
		fmt.Fprint(r.Output, "you> ")
	case view.ChoicePending:
		fmt.Fprint(r.Output, "[c]ontinue / [r]etry > ")
	default:
		fmt.Fprint(r.Output, "[enter to continue] ")
	}
	text, err := reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *Runner) speaker(label string, role domain.Role) string {
	if r.Speaker != nil {
		return r.Speaker(label, role)
	}
	return label + ":"
}

func (r *Runner) loadOrStart(ctx context.Context, engine *Engine) (*domain.Session, *domain.View, error) {
	if r.Store != nil && r.SessionID != "" {
		if session, err := r.Store.Load(ctx, r.SessionID); err == nil {
			resumed, view, err := engine.Enter(ctx, session, session.CurrentNodeID)
			if err == nil {
				return resumed, view, nil
			}
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, fmt.Errorf("load session %q: %w", r.SessionID, err)
		}
	}
	return engine.Start(ctx, r.SessionID)
}

func (r *Runner) save(ctx context.Context, session *domain.Session) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	return r.Store.Save(ctx, session)
}
