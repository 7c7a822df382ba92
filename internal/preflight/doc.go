// Package preflight validates the environment before the daemon starts
// watching: directory existence and permissions for every path the pipeline
// writes to.
package preflight
