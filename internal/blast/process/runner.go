// Package process runs search binaries and classifies how they exited.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// maxLineBytes bounds a single output line; alignment rows of long subjects can be wide.
const maxLineBytes = 16 << 20

// argErrorLine matches the argument diagnostic printed by the search binaries on exit 1.
var argErrorLine = regexp.MustCompile(`\(CArgException[^)]*\)\s(.*)`)

// Kind tags an Outcome.
type Kind int

// Outcome kinds.
const (
	Success Kind = iota
	ArgumentFailure
	InternalFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ArgumentFailure:
		return "argument"
	case InternalFailure:
		return "internal"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a search run.
// Lines is set for Success; Message for failures; Status for InternalFailure.
type Outcome struct {
	Kind    Kind
	Lines   []string
	Message string
	Status  int
}

// Result is the raw capture of a finished child process.
type Result struct {
	Status int
	Stdout []string
	Stderr string
}

// Runner executes binaries with stdout and stderr captured in scoped temporary files.
type Runner struct {
	tempDir string
	grace   time.Duration
	ctrl    controller
	exits   *prometheus.CounterVec
	logger  *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTempDir sets the directory for capture files. Empty uses os.TempDir.
func WithTempDir(dir string) Option {
	return func(r *Runner) { r.tempDir = dir }
}

// WithGracePeriod sets the delay between interrupt and kill on cancellation.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) { r.grace = d }
}

// WithExitCounter counts exits by binary and status. Labels: "binary", "status".
func WithExitCounter(c *prometheus.CounterVec) Option {
	return func(r *Runner) { r.exits = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		grace:  DefaultGracePeriod,
		ctrl:   newController(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes a search binary and classifies its exit status.
// A non-nil error means the process could not be run to completion (spawn failure,
// cancellation); exit statuses are always reported through the Outcome.
func (r *Runner) Run(ctx context.Context, binary string, args []string) (Outcome, error) {
	res, err := r.Exec(ctx, binary, args)
	if err != nil {
		return Outcome{}, err
	}
	return Classify(res), nil
}

// Exec runs binary to completion and returns its exit status and captured output.
// Capture files are closed and removed on every path.
func (r *Runner) Exec(ctx context.Context, binary string, args []string) (*Result, error) {
	stdout, err := r.captureFile("stdout")
	if err != nil {
		return nil, err
	}
	defer release(stdout)

	stderr, err := r.captureFile("stderr")
	if err != nil {
		return nil, err
	}
	defer release(stderr)

	//nolint:gosec // argv is assembled by the command compiler, no shell involved
	cmd := exec.Command(binary, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := r.ctrl.Start(cmd); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	status := 0
	if err := wait(ctx, r.ctrl, cmd, r.grace); err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			r.logger.Warn("Search process cancelled",
				zap.String("binary", binary),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil, fmt.Errorf("%s: %w", filepath.Base(binary), err)
		case errors.As(err, &exitErr):
			status = exitErr.ExitCode()
		default:
			return nil, fmt.Errorf("wait %s: %w", binary, err)
		}
	}
	r.countExit(binary, status)

	lines, err := readLines(stdout)
	if err != nil {
		return nil, fmt.Errorf("read stdout: %w", err)
	}
	errText, err := readAll(stderr)
	if err != nil {
		return nil, fmt.Errorf("read stderr: %w", err)
	}

	r.logger.Debug("Process exited",
		zap.String("binary", binary),
		zap.Int("status", status),
		zap.Int("stdout_lines", len(lines)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{Status: status, Stdout: lines, Stderr: errText}, nil
}

// Classify maps an exit status to an Outcome.
// Status 1 is an argument rejection; everything else non-zero is internal.
func Classify(res *Result) Outcome {
	switch res.Status {
	case 0:
		return Outcome{Kind: Success, Lines: res.Stdout}
	case 1:
		return Outcome{Kind: ArgumentFailure, Message: argumentMessage(res.Stderr), Status: 1}
	default:
		// 2, 3, 4 and 255 are the documented infrastructure failures; anything else is
		// unexpected and handled the same way.
		return Outcome{Kind: InternalFailure, Message: res.Stderr, Status: res.Status}
	}
}

func argumentMessage(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		if m := argErrorLine.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return stderr
}

func (r *Runner) captureFile(stream string) (*os.File, error) {
	f, err := os.CreateTemp(r.tempDir, "seqsearch-"+stream+"-*")
	if err != nil {
		return nil, fmt.Errorf("create %s capture: %w", stream, err)
	}
	return f, nil
}

func (r *Runner) countExit(binary string, status int) {
	if r.exits != nil {
		r.exits.WithLabelValues(filepath.Base(binary), strconv.Itoa(status)).Inc()
	}
}

func release(f *os.File) {
	_ = f.Close()
	_ = os.Remove(f.Name())
}

func readLines(f *os.File) ([]string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return lines, nil
}

func readAll(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return string(data), nil
}
