package pyproject

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the manifest file name looked up in a project root
const DefaultPath = "pyproject.toml"

// ErrVersionNotFound is returned when no table of the manifest declares a version
var ErrVersionNotFound = errors.New("version field not found in manifest")

type document struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Load reads the manifest at path and validates its version
func Load(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
	}

	m, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid manifest", goerr.V("path", path))
	}
	m.Path = path

	return m, nil
}

// Parse decodes manifest content. [project] wins over [tool.poetry].
func Parse(data []byte) (*model.Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode TOML")
	}

	m := &model.Manifest{
		Name:    doc.Project.Name,
		Version: model.Version(doc.Project.Version),
	}
	if m.Version == "" && doc.Tool.Poetry.Version != "" {
		m.Version = model.Version(doc.Tool.Poetry.Version)
	}
	if m.Name == "" {
		m.Name = doc.Tool.Poetry.Name
	}

	var result *multierror.Error
	if m.Name == "" {
		result = multierror.Append(result, goerr.New("project name is missing"))
	}
	if doc.Project.Version == "" && doc.Tool.Poetry.Version == "" {
		result = multierror.Append(result, ErrVersionNotFound)
	} else if err := m.Version.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return m, nil
}

var (
	tableHeader = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*(#.*)?$`)
	versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])([^"']*)(["'])(.*)$`)
)

// SetVersion rewrites the version value of the manifest in place, keeping
// every other line untouched. It edits [project] when that table declares
// a version and [tool.poetry] otherwise.
func SetVersion(path string, version model.Version) error {
	if err := version.Validate(); err != nil {
		return goerr.Wrap(err, "refusing to write invalid version")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
	}

	current, err := Parse(data)
	if err != nil {
		return goerr.Wrap(err, "invalid manifest", goerr.V("path", path))
	}

	target := "project"
	var doc document
	if err := toml.Unmarshal(data, &doc); err == nil && doc.Project.Version == "" {
		target = "tool.poetry"
	}

	var out bytes.Buffer
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	table := ""
	replaced := false
	for s.Scan() {
		line := s.Text()
		if m := tableHeader.FindStringSubmatch(line); m != nil {
			table = strings.TrimSpace(m[1])
		} else if table == target && !replaced {
			if m := versionLine.FindStringSubmatch(line); m != nil && m[3] == current.Version.String() {
				line = m[1] + m[2] + version.String() + m[4] + m[5]
				replaced = true
			}
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return goerr.Wrap(err, "failed to scan manifest", goerr.V("path", path))
	}
	if !replaced {
		return goerr.Wrap(ErrVersionNotFound, "no editable version line", goerr.V("path", path), goerr.V("table", target))
	}

	if !bytes.HasSuffix(data, []byte("\n")) {
		out.Truncate(out.Len() - 1)
	}

	info, err := os.Stat(path)
	if err != nil {
		return goerr.Wrap(err, "failed to stat manifest", goerr.V("path", path))
	}
	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return goerr.Wrap(err, "failed to write manifest", goerr.V("path", path))
	}

	return nil
}
