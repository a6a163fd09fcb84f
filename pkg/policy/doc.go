// Package policy defines governance policies and the predicate library that
// gives them meaning.
//
// A Policy binds a scope (global, organization, environment) and an active
// flag to exactly one condition type from a closed enumeration. Each condition
// type maps to a predicate: a pure boolean function over a model snapshot, a
// proposed compliance status, and the model's evidence count. Predicates do no
// I/O; everything they inspect is loaded before evaluation, which is what lets
// the enforcement coordinator evaluate them inside a transaction and replay
// them freely.
//
// A policy whose condition type has no registered predicate is inert: it is
// skipped during enforcement rather than treated as an error, so deployments
// with older binaries tolerate policies created for newer condition kinds.
//
// The Registry provides a cached read path over policy storage. The cache is
// invalidated synchronously on every policy write; enforcement does not use
// the cache at all and re-reads policies inside its own transaction.
package policy
