package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airband-io/airband/pkg/adapters/file"
)

const lintScenarioDoc = `
id: lint-check
name: Lint Check
nodes:
  - id: start
    type: transmission
    content:
      transmission_id: tower-call
  - id: readback
    type: user_response
    content:
      expected_transmission_id: pilot-reedback
edges:
  - from: start
    to: readback
    condition:
      type: default
transmissions:
  - id: tower-call
    role: atc
    blocks:
      - order: 1
        text: "cleared for takeoff"
  - id: pilot-readback
    role: pilot
    blocks:
      - order: 1
        text: "cleared for takeoff"
`

func TestMissingTransmissionRefs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lint-check.yaml")
	if err := os.WriteFile(path, []byte(lintScenarioDoc), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	source, err := file.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	graph, err := source.LoadGraph(ctx, "lint-check")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	// The user_response node references "pilot-reedback" but the library
	// defines "pilot-readback".
	missing := missingTransmissionRefs(ctx, graph, source)
	if len(missing) != 1 {
		t.Fatalf("missing = %v, want exactly the typo'd reference", missing)
	}
	if missing[0].nodeID != "readback" || missing[0].transmissionID != "pilot-reedback" {
		t.Errorf("missing[0] = %+v, want node readback -> pilot-reedback", missing[0])
	}
}

func TestMissingTransmissionRefsCleanGraph(t *testing.T) {
	dir := t.TempDir()
	// Fix the typo; the document should then lint clean.
	fixed := strings.Replace(lintScenarioDoc, "pilot-reedback", "pilot-readback", 1)
	if err := os.WriteFile(filepath.Join(dir, "lint-check.yaml"), []byte(fixed), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	source, err := file.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	graph, err := source.LoadGraph(ctx, "lint-check")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if missing := missingTransmissionRefs(ctx, graph, source); len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}
