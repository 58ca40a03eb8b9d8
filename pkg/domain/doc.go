/*
Package domain contains the core domain models for the airband engine.

It defines the scenario graph (Nodes, Edges, Conditions), the runtime
Session with its transcript and rewind snapshots, and the view model handed
to presentation layers. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Node: a single step in a scenario, with a typed content variant per NodeType.
  - Edge: a directed, condition-guarded transition between two nodes.
  - Graph: the immutable adjacency structure a session traverses.
  - Session: one trainee's live traversal state, including per-node history snapshots.
  - View: the render-ready projection returned after every transition.
*/
package domain
