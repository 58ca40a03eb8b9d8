package airband_test

import (
	"context"
	"fmt"
	"log"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/pkg/adapters/memory"
	"github.com/airband-io/airband/pkg/domain"
)

// Example walks a two-node scenario: a situation briefing followed by a
// tower transmission rendered from its template.
func Example() {
	graph := &domain.Graph{
		ID:              "short-final",
		GlobalVariables: map[string]string{"callsign": "N123AB"},
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeSituation, Content: domain.SituationContent{
				Text: "You are on final for runway 27.",
			}},
			{ID: "clearance", Type: domain.NodeTransmission, Content: domain.TransmissionContent{
				TransmissionID: "tower-clearance",
			}},
		},
		Edges: []domain.Edge{
			{From: "start", To: "clearance", Condition: domain.Condition{Type: domain.ConditionDefault}},
		},
	}
	source := memory.NewTransmissionSource(
		domain.Transmission{ID: "tower-clearance", Role: domain.RoleATC, Blocks: []domain.Block{
			{Order: 1, Text: "{{callsign}}"},
			{Order: 2, Text: "cleared to land runway 27"},
		}},
	)

	engine, err := airband.New(graph, source)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session, view, err := engine.Start(ctx, "example")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(view.Text)

	session, view, err = engine.Acknowledge(ctx, session)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(view.Text)

	session, _, err = engine.Acknowledge(ctx, session)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(session.Phase)

	// Output:
	// You are on final for runway 27.
	// N123AB, cleared to land runway 27
	// complete
}
