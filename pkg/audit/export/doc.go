// Package export renders violations and audit entries as CSV or JSON for
// downstream compliance tooling. Exports read the audit trail as an
// append-only log and never mutate it.
package export
