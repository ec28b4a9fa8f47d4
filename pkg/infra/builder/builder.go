package builder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// ErrNoArtifacts is returned when the build tool produced nothing to publish
var ErrNoArtifacts = errors.New("build produced no artifacts")

// DefaultCommand builds sdist and wheel with the PyPA build frontend
var DefaultCommand = []string{"python", "-m", "build"}

type builder struct {
	runner  interfaces.CommandRunner
	command []string
	distDir string
	clean   bool
}

// Option configures the builder
type Option func(*builder)

// WithCommand sets the build command line
func WithCommand(cmd ...string) Option {
	return func(b *builder) {
		if len(cmd) > 0 {
			b.command = cmd
		}
	}
}

// WithDistDir sets the output directory, relative to the project root
func WithDistDir(dir string) Option {
	return func(b *builder) {
		b.distDir = dir
	}
}

// WithClean removes the output directory before building
func WithClean(clean bool) Option {
	return func(b *builder) {
		b.clean = clean
	}
}

// New creates a Builder running an external build tool
func New(runner interfaces.CommandRunner, opts ...Option) interfaces.Builder {
	b := &builder{
		runner:  runner,
		command: DefaultCommand,
		distDir: "dist",
		clean:   true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the build tool in dir and collects the distributions it wrote
func (b *builder) Build(ctx context.Context, dir string) ([]*model.Artifact, error) {
	logger := ctxlog.From(ctx)

	distDir := DistPath(dir, b.distDir)

	if b.clean {
		if err := os.RemoveAll(distDir); err != nil {
			return nil, goerr.Wrap(err, "failed to clean dist directory", goerr.V("dir", distDir))
		}
	}

	logger.Info("Building package", "dir", dir, "command", b.command)
	if _, err := b.runner.Run(ctx, &model.Command{
		Dir:  dir,
		Name: b.command[0],
		Args: b.command[1:],
	}); err != nil {
		return nil, goerr.Wrap(err, "build command failed", goerr.V("dir", dir))
	}

	artifacts, err := Collect(distDir)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, goerr.Wrap(ErrNoArtifacts, "empty dist directory", goerr.V("dir", distDir))
	}

	for _, a := range artifacts {
		logger.Info("Built artifact", "name", a.Name, "kind", a.Kind, "size", a.Size)
	}

	return artifacts, nil
}

// DistPath resolves distDir against the project root unless it is absolute
func DistPath(projectDir, distDir string) string {
	if filepath.IsAbs(distDir) {
		return distDir
	}
	return filepath.Join(projectDir, distDir)
}

// Collect returns the sdists and wheels in dir sorted by name
func Collect(dir string) ([]*model.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read dist directory", goerr.V("dir", dir))
	}

	var artifacts []*model.Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind := model.ArtifactKindOf(e.Name())
		if kind == model.ArtifactUnknown {
			continue
		}

		path, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve artifact path", goerr.V("name", e.Name()))
		}
		size, digest, err := digestFile(path)
		if err != nil {
			return nil, err
		}

		artifacts = append(artifacts, &model.Artifact{
			Path:   path,
			Name:   e.Name(),
			Kind:   kind,
			Size:   size,
			SHA256: digest,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
	return artifacts, nil
}

func digestFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", goerr.Wrap(err, "failed to open artifact", goerr.V("path", path))
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", goerr.Wrap(err, "failed to hash artifact", goerr.V("path", path))
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
