// Package domain defines the shared types, collaborator interfaces and error
// taxonomy for packsync.
//
// It contains no logic beyond small accessors so that every other package can
// depend on it without cycles. Concrete implementations live in their own
// packages (internal/store, internal/trust, internal/verify, ...) and assert
// conformance with the interfaces declared here.
package domain
