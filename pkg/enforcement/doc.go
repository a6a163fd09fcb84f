// Package enforcement implements the policy gate on compliance status
// transitions. The Coordinator runs one enforcement pass per requested
// transition, entirely inside a single storage transaction:
//
//  1. Validate that the proposed status is a recognized lifecycle value
//     (rejected before any policy evaluation otherwise).
//  2. Load the model and its evidence count, and resolve the applicable
//     active policies, all through the same transaction.
//  3. Evaluate each policy's predicate in registry order (creation order).
//     A policy whose condition type has no registered predicate is skipped.
//  4. On the first unsatisfied predicate: record a PolicyViolation and an
//     audit entry in the same transaction and return a denied Decision.
//     Remaining policies are not evaluated, so exactly one blocking policy
//     is ever attributed.
//  5. If every policy is satisfied, apply the status change and record a
//     STATUS_CHANGE audit entry, again in the same transaction.
//
// Any persistence failure rolls the transaction back and surfaces as an
// error: an enforcement pass that cannot record why it blocked something
// never reports the transition as allowed (fail closed).
package enforcement
