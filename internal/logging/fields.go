package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEntity is the standardized structured logging key for entity (ticker) names.
	FieldEntity = "entity"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
	// FieldOutput is the standardized structured logging key for normalized output paths.
	FieldOutput = "output"
	// FieldEventType is the standardized structured logging key for machine-readable event tags.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator guidance on failures.
	FieldErrorHint = "error_hint"
	// FieldKind is the standardized structured logging key for inspected item kinds.
	FieldKind = "kind"
	// FieldEntries is the standardized structured logging key for archive entry counts.
	FieldEntries = "entries"
)
