// Package daemon wires configuration, the catalog, and the registrar into a
// single supervised process. A lock file keeps a second instance from
// watching the same root.
package daemon
