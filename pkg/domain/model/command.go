package model

// Command is an external process invocation
type Command struct {
	Dir  string   // Working directory, empty for the current one
	Env  []string // Extra environment in KEY=VALUE form, appended to os.Environ()
	Name string   // Executable
	Args []string // Arguments
}
