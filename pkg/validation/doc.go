// Package validation implements the pure field rules for garage records and
// account credentials. Every function is side-effect free; the only external
// input is the reference time used for the upper year bound.
//
// Messages are part of the UI contract and are reproduced verbatim by the form
// controller, the HTTP API and the CLI.
package validation
