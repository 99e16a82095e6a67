// Package store defines the persistence contracts for garage records and user
// profiles together with the coded error type every implementation returns.
//
// Implementations live under internal/store. When the backend is not
// configured the composition root wires Unavailable, which fails every call
// with CodeBackendNotInitialized before touching any I/O.
package store
