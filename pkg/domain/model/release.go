package model

// ReleaseInfo represents information extracted from a tag push event
type ReleaseInfo struct {
	Owner       string // Repository owner
	Repo        string // Repository name
	CommitSHA   string // Commit SHA the tag points to
	TagName     string // Release tag name
	ReleaseName string // Release name
}

// ReleaseRequest is the remote release to create
type ReleaseRequest struct {
	Repository    Repository
	TagName       string
	Name          string
	Body          string
	Prerelease    bool
	Draft         bool
	GenerateNotes bool
}

// Release is a remote release object bound to a tag
type Release struct {
	ID      int64
	TagName string
	Name    string
	HTMLURL string
	Draft   bool
	Assets  []string
}
