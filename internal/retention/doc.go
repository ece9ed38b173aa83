// Package retention prunes old backup snapshots of a project. Backups older
// than a day threshold are deletion candidates unless they are among the N
// most recent; deletion is best-effort per snapshot and a dry run reports the
// same selection without removing anything.
package retention
