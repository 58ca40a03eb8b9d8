/*
Package ports defines the driven ports (interfaces) for the airband engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various graph sources, transmission
libraries, scoring collaborators, and session stores.

# Key Interfaces

  - GraphSource: loads authored scenario graphs.
  - TransmissionSource: resolves transmission template ids to block lists.
  - ResponseValidator: the opaque scoring collaborator.
  - SessionStore: persists and restores session state.
  - DistributedLocker: serializes session access across replicas.
*/
package ports
