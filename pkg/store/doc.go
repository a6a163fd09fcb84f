// Package store provides persistence for the governance service: the model
// registry, policy definitions, and the append-only audit/violation trail,
// all in one database so a single transaction can span them.
//
// Two backends implement the Store interface:
//
//   - SQLiteStore: the production backend, on a single SQLite database.
//     Both the CGO driver (mattn/go-sqlite3, driver name "sqlite3") and the
//     pure-Go driver (modernc.org/sqlite, driver name "sqlite") are linked;
//     the configured driver name selects between them, with the pure-Go
//     driver as the default.
//   - MemoryStore: an in-memory backend for testing.
//
// # Transactions
//
// WithTx runs a function inside one transactional unit of work and is the
// backbone of the enforcement fail-closed guarantee: the policy read, the
// violation/audit append, and the model status write all happen on the same
// Tx, and any failure rolls back the lot. Audit appends outside a transition
// (CRUD logging) may use the store directly, since Store itself satisfies the
// same Tx interface.
package store
