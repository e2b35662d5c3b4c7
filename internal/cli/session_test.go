package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/db47h/fredy"
	"github.com/db47h/fredy/internal/config"
	"github.com/db47h/fredy/internal/logging"
	"github.com/db47h/fredy/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = "A,EMPTY,(B!),C!\n1,2,3\n"

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.fredy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func input(s string) *string { return &s }

func newTestSession(path string, cfg config.Config, stdin string) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return NewSession(Options{
		Path:   path,
		Config: cfg,
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &out,
		Logger: logging.NewNop(),
	}), &out
}

func TestSession_Run(t *testing.T) {
	cfg := config.Default()
	cfg.Input = input("1")
	s, out := newTestSession(writeProgram(t, example), cfg, "")
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "Animatronics: A, EMPTY, (B!), C!\n"+
		"Resolved: 1\n"+
		"Bits: 11\n"+
		"As Int: 3\n"+
		"As Chr: '\\x03'\n", out.String())
}

func TestSession_Run_debug(t *testing.T) {
	cfg := config.Default()
	cfg.Input = input("0")
	cfg.Debug = true
	cfg.Draw = true
	s, out := newTestSession(writeProgram(t, example), cfg, "")
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Schedule: 1,2,3\n")
	assert.Contains(t, out.String(), "Night 1 (employee 0): 1=A 2=EMPTY 3=EMPTY idle\n")
	assert.Contains(t, out.String(), "(B!)  ─x── M0\n")
	assert.Contains(t, out.String(), "Bits: 01\n")
}

func TestSession_Run_prompt(t *testing.T) {
	path := writeProgram(t, "(A!),(B!)\n")
	s, out := newTestSession(path, config.Default(), "n\ny\n")
	s.opts.Interactive = true
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Is (A!) present? (Y/N) Is (B!) present? (Y/N) ")
	assert.Contains(t, out.String(), "Resolved: 01\n")

	// second run replays the record; stdin is exhausted
	out.Reset()
	require.NoError(t, s.Run(context.Background()))
	assert.NotContains(t, out.String(), "present?")
	assert.Contains(t, out.String(), "Bits: 01\n")

	// a different optional count asks again; EOF answers absent
	require.NoError(t, os.WriteFile(path, []byte("(A!),(B!),(C)\n"), 0o644))
	out.Reset()
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Resolved: 000\n")
}

func TestSession_Run_backend(t *testing.T) {
	for _, b := range []string{config.BackendReference, config.BackendCircuit} {
		t.Run(b, func(t *testing.T) {
			cfg := config.Default()
			cfg.Input = input("1")
			cfg.Backend = b
			cfg.Shots = 4
			cfg.Parallel = 2
			m := metrics.New()
			s, out := newTestSession(writeProgram(t, example), cfg, "")
			s.opts.Metrics = m
			require.NoError(t, s.Run(context.Background()))
			assert.Contains(t, out.String(), "Results: {\"11\": 4}\nSampled: 11\n")
			var text bytes.Buffer
			require.NoError(t, m.WriteText(&text))
			assert.Contains(t, text.String(), `fredy_shots_total{backend="`+b+`"} 4`)
			assert.Contains(t, text.String(), "fredy_runs_total 1")
		})
	}
}

func TestSession_Run_noisyBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Input = input("1")
	cfg.Backend = config.BackendCircuit
	cfg.Noise = 1
	cfg.Shots = 3
	s, out := newTestSession(writeProgram(t, example), cfg, "")
	// disagreement is only logged for noisy backends
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Results: {\"00\": 3}\n")
	assert.Contains(t, out.String(), "Bits: 11\n")
}

func TestSession_Run_errors(t *testing.T) {
	data := []struct {
		name string
		src  string
		in   string
		err  error
	}{
		{"malformed", "A,B\n1,2\n", "", fredy.ErrMalformedProgram},
		{"range", "A,B\n1,2,3\n", "", fredy.ErrIndexOutOfRange},
		{"short_input", example, "", fredy.ErrMalformedInput},
		{"codepoint", strings.Repeat("x!,", 20) + "x!\n", "", fredy.ErrInvalidCodepoint},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Input = input(d.in)
			s, out := newTestSession(writeProgram(t, d.src), cfg, "")
			err := s.Run(context.Background())
			assert.True(t, errors.Is(err, d.err), "got error %v, expected %v", err, d.err)
			if d.err == fredy.ErrInvalidCodepoint {
				assert.Contains(t, out.String(), "As Int: 2097151\n")
				assert.NotContains(t, out.String(), "As Chr")
			}
		})
	}

	s, _ := newTestSession(filepath.Join(t.TempDir(), "missing"), config.Default(), "")
	assert.Error(t, s.Run(context.Background()))
}

func TestWriteReports_colour(t *testing.T) {
	rs := []fredy.Report{{Night: 1, Employee: 1, Step: fredy.Step{West: 1, Control: 2, East: 3}, Fired: true}}
	var plain, colour bytes.Buffer
	WriteReports(&plain, rs, false)
	WriteReports(&colour, rs, true)
	assert.Equal(t, "Night 1 (employee 1): 1=EMPTY 2=EMPTY 3=EMPTY swapped\n", plain.String())
	assert.Contains(t, colour.String(), "\x1b[")
	assert.Contains(t, colour.String(), "swapped")
}

type runs chan error

func (r runs) next(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for a run")
	}
	return nil
}

func TestSession_Watch(t *testing.T) {
	path := writeProgram(t, example)
	cfg := config.Default()
	cfg.Input = input("1")
	s, out := newTestSession(path, cfg, "")
	done := make(runs, 64)
	s.opts.OnRun = func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	werr := make(chan error, 1)
	go func() { werr <- s.Watch(ctx) }()

	require.NoError(t, done.next(t))
	require.NoError(t, os.WriteFile(path, []byte("A,EMPTY,(B!),C!\n3,4,2\n"), 0o644))
	// an editor may produce several write events
	for {
		if err := done.next(t); err == nil {
			break
		}
	}
	cancel()
	require.NoError(t, <-werr)
	assert.Contains(t, out.String(), "Bits: 11\n")
	assert.Contains(t, out.String(), "Bits: 01\n")
}
