// Package form implements the vehicle editor controller: the state machine
// that seeds field values, loads the make catalog and the dependent model
// list, validates on submit and hands the record to a Submitter.
//
// The controller owns its field state exclusively. Renderers (the HTML views,
// the terminal runner) read it through Snapshot and drive it through the
// exported actions; it never talks to persistence except through Submitter.
//
// Lifecycle:
//
//	Initializing → Ready → Submitting → SubmitSuccess
//	                 ↑          ↓
//	                 └──── SubmitError
//	Initializing → LoadError → (Retry) → Initializing
//	Ready → Discarded (cancel confirmed)
package form
