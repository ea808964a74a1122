package target

// Version constants for the declaration schema and the tool.
const (
	// SchemaVersion is the Declaration schema version.
	SchemaVersion = "1"

	// ToolVersion is the pybuild version.
	ToolVersion = "0.1.0"
)
