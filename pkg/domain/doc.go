/*
Package domain contains the core domain models of the NovaPay wizard engine.

It defines the fundamental entities of a linear, multi-step flow such as the
step description, the immutable wizard definition and the per-session
execution state. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - StepSpec: a single screen of a flow (label, validator, async action, terminal flag).
  - Definition: the ordered, immutable list of steps of one flow.
  - State: the runtime snapshot of a session (current index, status, payload, history).
  - StateDiff: a partial update used to stream state changes to clients.
*/
package domain
