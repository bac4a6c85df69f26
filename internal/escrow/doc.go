// Package escrow implements the room resolution engine: the room registry, the
// Open -> Started -> Settled lifecycle, the append-only action log with derived fold
// status, the per-room vote tally and the settlement step that pays the pool to the
// majority-voted winner and updates reputation.
//
// An Engine is not safe for concurrent use. Callers provide a total order over
// operations (see server.Sequencer); each operation is either fully applied or
// rejected with no state change.
package escrow
