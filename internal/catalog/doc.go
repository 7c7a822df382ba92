// Package catalog persists a journal of normalization attempts in SQLite.
//
// The journal is observational: the pipeline re-scans source directories on
// startup and never consults the catalog to decide whether to process an item.
// It exists so `intake status` and `intake history` can answer what happened
// without grepping logs. Catalog write failures are logged by callers and
// never block normalization.
//
// The database is transient history rather than a long-term archive. Schema
// changes bump the version in schema.go; users delete the database to adopt
// the new schema.
package catalog
