// Package votingservice implements the voting-session coordinator inside
// the assembly-voting context.
//
// The module owns the single session state machine (test, speaker list,
// motion poll, assignment poll), drives the external polling hardware
// through a start/poll/stop protocol, reconciles per-keypad vote events
// against the seat/participant directory, and produces idempotent aggregate
// results. Business rules live in the application/domain layers;
// infrastructure stays behind ports and adapters.
package votingservice
