package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// Error describes a failed external command
type Error struct {
	Args     string // Command line, redacted
	Stderr   string // Trimmed stderr, redacted
	ExitCode int    // -1 when the process did not exit normally
	Cause    error
}

func (e *Error) Error() string {
	res := fmt.Sprintf("`%s` failed: %v", e.Args, e.Cause)
	if e.Stderr != "" {
		res = fmt.Sprintf("%s: %s", res, e.Stderr)
	}
	return res
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit status carried by err, or -1 if err is not a
// command failure with an exit status.
func ExitCode(err error) int {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// Runner executes commands with logging, redaction and an optional timeout
type Runner struct {
	secrets []string
	timeout time.Duration
}

// Option configures Runner
type Option func(*Runner)

// WithSecrets redacts the given values from logged command lines, output and errors
func WithSecrets(secrets ...string) Option {
	return func(r *Runner) {
		for _, s := range secrets {
			if s != "" {
				r.secrets = append(r.secrets, s)
			}
		}
	}
}

// WithTimeout bounds every command. Zero means no limit beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// New creates a Runner
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) redact(text string) string {
	for _, s := range r.secrets {
		text = strings.ReplaceAll(text, s, "******")
	}
	return text
}

// Run executes cmd and returns its stdout without the trailing newline
func (r *Runner) Run(ctx context.Context, cmd *model.Command) (string, error) {
	if cmd == nil || cmd.Name == "" {
		return "", goerr.New("command name is empty")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// log in a way we can copy-and-paste into a terminal
	args := r.redact(strings.Join(append([]string{cmd.Name}, cmd.Args...), " "))
	logger := ctxlog.From(ctx).With("exec_id", uuid.NewString())
	logger.Debug("Running command", "cmd", args, "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	output := strings.TrimSuffix(stdout.String(), "\n")
	logger.Debug("Command finished",
		"duration", time.Since(start),
		"output", r.redact(output),
	)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}

		return output, &Error{
			Args:     args,
			Stderr:   strings.TrimSpace(r.redact(stderr.String())),
			ExitCode: exitCode,
			Cause:    errors.New(r.redact(err.Error())),
		}
	}

	return output, nil
}
