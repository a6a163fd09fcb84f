// Package audit provides the append-only compliance trail of the governance
// service: audit entries for every governance-relevant action and violation
// records for every transition a policy blocked.
//
// Both record kinds are immutable once written. The storage boundary exposes
// append and query operations only; there is no update or delete surface, so
// immutability holds by construction. Retention pruning (see the retention
// subpackage) is the one sanctioned deletion path and operates on age and
// volume, never on record content.
//
// Records reference policies and models by identity, never by ownership, so
// they remain valid after the referenced policy is deactivated or the model
// is retired.
package audit
