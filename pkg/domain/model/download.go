package model

// DownloadResult represents a source archive extracted for a release
type DownloadResult struct {
	TempDir string   // Path to temporary directory
	RootDir string   // Project root inside TempDir
	Files   []string // List of extracted files
	Size    int64    // Total size in bytes
}
