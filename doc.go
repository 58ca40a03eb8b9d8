/*
Package airband is a scenario flow engine for radio phraseology training.

An authored scenario is a directed graph of communication events: ATC
transmissions, situational prompts, required pilot responses, crew and
system events. The engine validates the graph, drives a trainee session
through it, substitutes variables into transmission templates, and branches
on the outcome of an external response validation. Trainees can rewind to
any previously visited node; the transcript is restored exactly as it was
at that point.

# Concept

The engine is a reentrant state machine with a single suspension point:
waiting for the validation collaborator. All other transitions happen in
response to discrete trainee actions. Stale validation results (the trainee
navigated away while a call was in flight) are identified by sequence
tickets and discarded.

# Usage

	graph := &domain.Graph{} // nodes, edges, global variables
	source := memory.NewTransmissionSource(transmissions...)

	eng, err := airband.New(graph, source)
	if err != nil {
		log.Fatal(err) // malformed graph: the only fatal condition
	}

	session, view, err := eng.Start(ctx, "session-123")
	// present view, then drive the session:
	session, view, err = eng.Acknowledge(ctx, session)
	session, view, req, err := eng.SubmitResponse(ctx, session, "Tower, N123AB, ready for departure")
	outcome, _ := scorer.Evaluate(ctx, *req)
	session, view, err = eng.ResolveEvaluation(ctx, session, req.Ticket, outcome)

The Runner type wraps this loop for terminal hosts.
*/
package airband
