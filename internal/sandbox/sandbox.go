// Package sandbox executes generated scraper code in a confined child
// process. Confinement layers: source sanitization at intake, an import
// allowlist enforced inside the child, OS resource limits where the
// platform has them, and a parent-enforced wall-clock timeout everywhere.
//
// Expected failures (timeouts, crashes, bad output) come back as a
// SandboxResult with Success=false. The error return is reserved for faults
// of the sandbox itself, such as being unable to spawn a process.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a static-profile run; dynamic runs get longer.
	DefaultTimeout        = 30 * time.Second
	DefaultDynamicTimeout = 60 * time.Second
	DefaultMemoryLimitMB  = 512

	// Extra wall-clock slack past the nominal timeout so a child that is
	// wrapping up cleanly can still flush its JSON.
	graceTimeout = 5 * time.Second
)

// Sandbox runs generated code under one profile with fixed limits. Safe for
// concurrent use; each Execute call owns its process and temp file.
type Sandbox struct {
	profile Profile
	limits  Limits
	python  string
	backend limitBackend
	log     zerolog.Logger
}

// New builds a Sandbox, locating the Python interpreter up front so a
// missing runtime surfaces at startup rather than mid-pipeline.
func New(profile Profile, timeout time.Duration, memoryMB int, log zerolog.Logger) (*Sandbox, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if memoryMB <= 0 {
		memoryMB = DefaultMemoryLimitMB
	}

	python, err := findPython()
	if err != nil {
		return nil, err
	}

	backend := newLimitBackend()
	log = log.With().Str("component", "sandbox").Str("profile", string(profile)).Logger()
	if !backend.strict() {
		log.Warn().Str("backend", backend.name()).
			Msg("OS resource limits unavailable, running with timeout and memory watchdog only")
	}

	return &Sandbox{
		profile: profile,
		limits:  Limits{Timeout: timeout, MemoryMB: memoryMB},
		python:  python,
		backend: backend,
		log:     log,
	}, nil
}

func findPython() (string, error) {
	if p := os.Getenv("SCRAPPLY_PYTHON_PATH"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("SCRAPPLY_PYTHON_PATH: %w", err)
		}
		return p, nil
	}
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no python interpreter found in PATH")
}

// Execute sanitizes source, wraps it in the harness and runs it against url.
func (s *Sandbox) Execute(ctx context.Context, source, url string) (models.SandboxResult, error) {
	cleaned, err := Sanitize(source, s.profile)
	if err != nil {
		// Rejected code is an expected outcome: the orchestrator may
		// regenerate, but nothing gets executed.
		s.log.Warn().Err(err).Msg("generated code rejected at intake")
		return models.SandboxResult{
			Success:   false,
			Error:     err.Error(),
			ErrorType: "unsafe_code",
		}, nil
	}

	script, err := s.writeScript(cleaned)
	if err != nil {
		return models.SandboxResult{}, fmt.Errorf("sandbox setup: %w", err)
	}
	defer os.Remove(script)

	return s.run(ctx, script, url)
}

func (s *Sandbox) writeScript(code string) (string, error) {
	f, err := os.CreateTemp("", "scrapply-*.py")
	if err != nil {
		return "", err
	}
	wrapped := wrapCode(code, s.profile, s.backend.prelude(s.limits))
	if _, err := f.WriteString(wrapped); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (s *Sandbox) run(ctx context.Context, script, url string) (models.SandboxResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(s.python, script, url)
	cmd.Dir = os.TempDir()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	s.backend.configure(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return models.SandboxResult{}, fmt.Errorf("failed to spawn sandbox process: %w", err)
	}
	s.log.Debug().Int("pid", cmd.Process.Pid).Str("url", url).Msg("sandbox process started")

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if !s.backend.strict() {
		go watchMemory(watchCtx, int32(cmd.Process.Pid), s.limits.MemoryMB, func() {
			s.backend.kill(cmd)
		}, s.log)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-time.After(s.limits.Timeout + graceTimeout):
		s.log.Warn().Dur("timeout", s.limits.Timeout).Msg("sandbox timeout, killing process")
		s.backend.kill(cmd)
		<-done
		return models.SandboxResult{
			Success:       false,
			Error:         fmt.Sprintf("execution timeout after %s", s.limits.Timeout),
			ErrorType:     "timeout",
			StdoutPreview: preview(stdout.Bytes()),
			StderrPreview: preview(stderr.Bytes()),
		}, nil
	case <-ctx.Done():
		s.backend.kill(cmd)
		<-done
		return models.SandboxResult{
			Success:   false,
			Error:     fmt.Sprintf("execution cancelled: %v", ctx.Err()),
			ErrorType: "cancelled",
		}, nil
	}

	elapsed := time.Since(start)

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		s.log.Error().
			Int("exit_code", exitCode).
			Str("stderr", preview(stderr.Bytes())).
			Msg("sandbox script failed")
		return models.SandboxResult{
			Success:       false,
			Error:         fmt.Sprintf("script execution failed (exit code %d)", exitCode),
			ErrorType:     "runtime_error",
			ExitCode:      exitCode,
			StdoutPreview: preview(stdout.Bytes()),
			StderrPreview: preview(stderr.Bytes()),
		}, nil
	}

	result := parseOutput(stdout.Bytes(), stderr.Bytes())
	s.log.Info().
		Bool("success", result.Success).
		Int("records", len(result.Data)).
		Dur("elapsed", elapsed).
		Msg("sandbox execution completed")
	return result, nil
}
