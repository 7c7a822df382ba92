// Package faults defines the error taxonomy shared by the watch-and-normalize
// pipeline.
//
// Sentinel markers classify failures so callers can decide between skip, warn,
// and abort without string matching: corrupt archives and transient I/O skip a
// single item, instability skips until the next filesystem event, registration
// failures skip a single entity. Wrap tags an error with one of the markers
// plus component context.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCorruptArchive marks an archive-extension file that fails to parse.
	ErrCorruptArchive = errors.New("corrupt archive")
	// ErrTransient marks per-item I/O failures (path vanished, permission race).
	ErrTransient = errors.New("transient failure")
	// ErrUnstable marks a file whose size never settled within the probe timeout.
	ErrUnstable = errors.New("file not stable")
	// ErrRegistration marks an entity whose directories cannot be created or watched.
	ErrRegistration = errors.New("registration failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
