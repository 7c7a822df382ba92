// Package watcher turns filesystem activity in one entity's source directory
// into normalized output in its destination directory. Each watcher owns its
// OS watch, drains events through a single consumer goroutine, and treats
// every failure as item-local.
package watcher
