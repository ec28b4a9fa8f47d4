package command_test

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/utils/command"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_Run(t *testing.T) {
	skipWithoutShell(t)
	ctx := context.Background()

	t.Run("returns trimmed stdout", func(t *testing.T) {
		r := command.New()
		out, err := r.Run(ctx, &model.Command{Name: "sh", Args: []string{"-c", "echo hello"}})
		gt.NoError(t, err)
		gt.Value(t, out).Equal("hello")
	})

	t.Run("runs in dir with extra env", func(t *testing.T) {
		dir := t.TempDir()
		r := command.New()
		out, err := r.Run(ctx, &model.Command{
			Dir:  dir,
			Env:  []string{"SHIPWRIGHT_TEST_VALUE=42"},
			Name: "sh",
			Args: []string{"-c", "echo $SHIPWRIGHT_TEST_VALUE; pwd"},
		})
		gt.NoError(t, err)
		gt.String(t, out).Contains("42")
	})

	t.Run("reports exit code and stderr", func(t *testing.T) {
		r := command.New()
		_, err := r.Run(ctx, &model.Command{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
		gt.Error(t, err)
		gt.Value(t, command.ExitCode(err)).Equal(3)

		var cmdErr *command.Error
		gt.Value(t, errors.As(err, &cmdErr)).Equal(true)
		gt.Value(t, cmdErr.Stderr).Equal("broken")
	})

	t.Run("redacts secrets", func(t *testing.T) {
		r := command.New(command.WithSecrets("s3cr3t"))
		_, err := r.Run(ctx, &model.Command{Name: "sh", Args: []string{"-c", "echo s3cr3t >&2; exit 1", "s3cr3t"}})
		gt.Error(t, err)
		gt.Value(t, strings.Contains(err.Error(), "s3cr3t")).Equal(false)
		gt.String(t, err.Error()).Contains("******")
	})

	t.Run("times out", func(t *testing.T) {
		r := command.New(command.WithTimeout(50 * time.Millisecond))
		_, err := r.Run(ctx, &model.Command{Name: "sleep", Args: []string{"5"}})
		gt.Error(t, err)
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := command.New().Run(ctx, &model.Command{})
		gt.Error(t, err)
	})
}

func TestExitCode_NotCommandError(t *testing.T) {
	gt.Value(t, command.ExitCode(errors.New("x"))).Equal(-1)
}
