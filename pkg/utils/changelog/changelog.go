package changelog

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// DefaultPath is the changelog file looked up in a project root
const DefaultPath = "CHANGELOG.md"

// matches "## [1.1] - 2024-01-01", "## v1.1", "## 1.1 (2024-01-01)"
var heading = regexp.MustCompile(`^##\s+\[?v?([0-9A-Za-z.+\-]+?)\]?(\s.*)?$`)

// Section returns the body under the level-2 heading of version, without
// the heading itself. It returns an empty string when no heading matches.
func Section(content string, version model.Version) string {
	var (
		lines []string
		found bool
	)

	s := bufio.NewScanner(strings.NewReader(content))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Text()
		if strings.HasPrefix(line, "## ") {
			if found {
				break
			}
			if m := heading.FindStringSubmatch(line); m != nil && m[1] == version.String() {
				found = true
			}
			continue
		}
		if found {
			lines = append(lines, line)
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ReadSection reads the changelog at path and returns the section of
// version. A missing file yields an empty section.
func ReadSection(path string, version model.Version) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to read changelog", goerr.V("path", path))
	}
	return Section(string(data), version), nil
}
