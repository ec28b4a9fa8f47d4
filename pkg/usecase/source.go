package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/infra/pyproject"
	"github.com/m-mizutani/shipwright/pkg/utils/changelog"
)

// DefaultExtractLimit bounds the uncompressed size of a source archive
const DefaultExtractLimit = 1 << 30

// ProcessTagPush downloads the source at the pushed tag and runs the
// publish workflow on it. The temporary checkout is removed afterwards.
func (uc *Release) ProcessTagPush(ctx context.Context, info *model.ReleaseInfo) (*model.PublishResult, error) {
	logger := ctxlog.From(ctx)

	if uc.github == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "GitHub client is required to process tag push")
	}
	if !model.IsReleaseTag(info.TagName) {
		return nil, goerr.New("not a release tag", goerr.V("tag", info.TagName))
	}

	logger.Info("Processing tag push",
		"owner", info.Owner,
		"repo", info.Repo,
		"commit_sha", info.CommitSHA,
		"tag_name", info.TagName,
	)

	ref := info.CommitSHA
	if ref == "" {
		ref = info.TagName
	}

	// Download ZIP from GitHub
	zipData, err := uc.github.DownloadZipball(ctx, info.Owner, info.Repo, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball",
			goerr.V("owner", info.Owner), goerr.V("repo", info.Repo), goerr.V("ref", ref))
	}

	logger.Info("Downloaded zipball", "size_bytes", len(zipData))

	source, err := uc.extractZip(ctx, zipData)
	if source != nil {
		defer func() {
			if removeErr := os.RemoveAll(source.TempDir); removeErr != nil {
				logger.Warn("Failed to clean up temporary directory",
					"temp_dir", source.TempDir,
					"error", removeErr,
				)
			} else {
				logger.Debug("Cleaned up temporary directory", "temp_dir", source.TempDir)
			}
		}()
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract zipball",
			goerr.V("owner", info.Owner), goerr.V("repo", info.Repo))
	}

	logger.Info("Extracted zipball to temporary directory",
		"temp_dir", source.TempDir,
		"root_dir", source.RootDir,
		"file_count", len(source.Files),
		"total_size_bytes", source.Size,
	)

	manifest, err := uc.ExtractVersion(ctx, filepath.Join(source.RootDir, pyproject.DefaultPath))
	if err != nil {
		return nil, err
	}

	return uc.Publish(ctx, &PublishInput{
		Dir:           source.RootDir,
		Manifest:      manifest,
		Repository:    model.Repository{Owner: info.Owner, Name: info.Repo},
		TagName:       info.TagName,
		ChangelogPath: filepath.Join(source.RootDir, changelog.DefaultPath),
	})
}

// extractZip extracts ZIP data to a temporary directory. The returned
// result is non-nil whenever the directory was created, even on error.
func (uc *Release) extractZip(ctx context.Context, zipData []byte) (*model.DownloadResult, error) {
	logger := ctxlog.From(ctx)

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create zip reader")
	}

	tempDir, err := os.MkdirTemp("", "shipwright-source-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}
	result := &model.DownloadResult{TempDir: tempDir, RootDir: tempDir}

	if err := os.Chmod(tempDir, 0700); err != nil {
		return result, goerr.Wrap(err, "failed to set directory permissions", goerr.V("dir", tempDir))
	}

	logger.Debug("Created temporary directory", "temp_dir", tempDir)

	remaining := uc.extractLimit
	for _, file := range zipReader.File {
		if int64(file.UncompressedSize64) > remaining {
			return result, goerr.New("archive exceeds size limit", goerr.V("limit", uc.extractLimit))
		}
		n, err := extractFile(file, tempDir, remaining)
		result.Size += n
		remaining -= n
		if err != nil {
			return result, goerr.Wrap(err, "failed to extract file", goerr.V("name", file.Name))
		}
		result.Files = append(result.Files, file.Name)
	}

	// GitHub zipballs wrap the tree in a single "<owner>-<repo>-<sha>/" directory
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return result, goerr.Wrap(err, "failed to read extracted directory")
	}
	if len(entries) == 1 && entries[0].IsDir() {
		result.RootDir = filepath.Join(tempDir, entries[0].Name())
	}

	return result, nil
}

// extractFile extracts a single file from ZIP to the destination directory,
// writing at most limit bytes. It returns the number of bytes written.
func extractFile(file *zip.File, destDir string, limit int64) (int64, error) {
	// prevent path traversal
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return 0, goerr.New("invalid file path detected", goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		return 0, os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, goerr.Wrap(err, "failed to create parent directories", goerr.V("dir", filepath.Dir(destPath)))
	}

	rc, err := file.Open()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open file in zip", goerr.V("file", file.Name))
	}
	defer rc.Close()

	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	n, err := io.Copy(destFile, io.LimitReader(rc, limit+1))
	if err != nil {
		return n, goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}
	if n > limit {
		return n, goerr.New("archive exceeds size limit", goerr.V("path", destPath))
	}

	return n, nil
}
