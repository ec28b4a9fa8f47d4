package model

// Manifest is the packaging descriptor of the project being released
type Manifest struct {
	Path    string  // Path to pyproject.toml
	Name    string  // Project name
	Version Version // Version literal
}
