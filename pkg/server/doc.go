// Package server provides the HTTP API of the governance service: model
// registry CRUD, the policy-gated status transition endpoint, policy
// administration, and the read-only violation/audit reporting surface.
//
// The transition endpoint is the inbound boundary of the enforcement
// coordinator. A denied transition is a client error (409) carrying the
// decision message verbatim, so the operator can see which policy fired; a
// persistence failure during enforcement is a server error (500) and the
// transition is not granted.
package server
