// Package main hosts the intake CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the daemon in the foreground,
// inspecting environment and catalog state, one-shot normalization, and
// configuration scaffolding. Configuration resolution is centralized in
// commandContext so subcommands stay declarative; the heavy lifting lives in
// the internal packages.
package main
