package cmd

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags; flags marked Multiple hold a []string
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// String returns a string flag or def.
func (a *CommandArgs) String(name, def string) string {
	if v, ok := a.Flags[name].(string); ok {
		return v
	}
	return def
}

// Bool returns a bool flag or false.
func (a *CommandArgs) Bool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

// Int returns an int flag or def.
func (a *CommandArgs) Int(name string, def int) int {
	if v, ok := a.Flags[name].(int64); ok {
		return int(v)
	}
	return def
}

// Strings returns every value of a repeatable flag.
func (a *CommandArgs) Strings(name string) []string {
	v, _ := a.Flags[name].([]string)
	return v
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type" or "t"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
	Multiple    bool   `json:"multiple"`          // Can be specified multiple times
}
