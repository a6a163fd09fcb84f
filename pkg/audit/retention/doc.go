// Package retention prunes aged audit entries on a cron schedule. Pruning is
// the only deletion path into the audit trail, operates on age and volume
// only, and never touches violation records.
package retention
