// Package registry maintains the set of entity watchers. It bootstraps from
// the directories already under the watch root and keeps watching the root so
// entities added at runtime are picked up without a restart.
package registry
