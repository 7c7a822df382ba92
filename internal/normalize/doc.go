// Package normalize turns raw downloaded items into their canonical form
// under a destination root.
//
// An inspection step classifies each item (plain file, directory, or zip with
// zero, one, or many entries); the normalizer then dispatches on that kind.
// Single-entry archives flatten to one file named after the entry, multi-entry
// archives extract into a directory named after the archive stem, and
// everything else is copied verbatim. All paths are overwritten in place so
// re-normalizing the same item is harmless.
package normalize
