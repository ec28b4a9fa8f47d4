package usecase

import (
	"bytes"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultWorkflowPath is where the tag-push workflow is written
const DefaultWorkflowPath = ".github/workflows/release.yml"

// ErrWorkflowExists is returned when the workflow file exists and overwrite is not requested
var ErrWorkflowExists = errors.New("workflow file already exists")

//go:embed templates/publish_workflow.yml
var workflowTemplate string

// GitHub Actions expressions use {{ }}, so the template uses [[ ]]
var workflowTmpl = template.Must(template.New("workflow").Delims("[[", "]]").Parse(workflowTemplate))

// WorkflowInput parameterizes the tag-push workflow
type WorkflowInput struct {
	Name          string
	PythonVersion string
	GoVersion     string
	ToolVersion   string
	IndexSecret   string // repository secret holding the index token, empty to skip the upload
}

func (in *WorkflowInput) withDefaults() *WorkflowInput {
	out := *in
	if out.Name == "" {
		out.Name = "release"
	}
	if out.PythonVersion == "" {
		out.PythonVersion = "3.x"
	}
	if out.GoVersion == "" {
		out.GoVersion = "stable"
	}
	if out.ToolVersion == "" {
		out.ToolVersion = "latest"
	}
	return &out
}

// RenderWorkflow renders the GitHub Actions workflow running the publish
// step on every pushed v* tag
func RenderWorkflow(in *WorkflowInput) ([]byte, error) {
	var buf bytes.Buffer
	if err := workflowTmpl.Execute(&buf, in.withDefaults()); err != nil {
		return nil, goerr.Wrap(err, "failed to render workflow")
	}
	return buf.Bytes(), nil
}

// WriteWorkflow renders the workflow into path, creating parent directories
func WriteWorkflow(path string, in *WorkflowInput, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return goerr.Wrap(ErrWorkflowExists, "refusing to overwrite", goerr.V("path", path))
		}
	}

	data, err := RenderWorkflow(in)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return goerr.Wrap(err, "failed to create workflow directory", goerr.V("path", path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write workflow", goerr.V("path", path))
	}
	return nil
}
