// Package cli drives NovaPay wizards from a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/novapay/internal/input"
	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/presentation/tui"
	"github.com/aretw0/novapay/internal/redact"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/session"
)

// ErrQuit is returned by Run when the user leaves with :quit. The session
// stays in the store and can be resumed.
var ErrQuit = errors.New("wizard left by user")

const helpText = "Commands: :back, :jump N, :reset, :cancel, :quit"

// Runner walks one session through its flow interactively.
type Runner struct {
	sessions *session.Manager
	in       io.Reader
	out      io.Writer
	stepper  *tui.Stepper
	render   tui.Renderer
	redactor *redact.Redactor
	logger   *slog.Logger
	maxSize  int
}

// Option configures a Runner.
type Option func(*Runner)

// WithIO sets where prompts are read from and written to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.in, r.out = in, out
	}
}

// WithPlainOutput disables colors and markdown styling.
func WithPlainOutput() Option {
	return func(r *Runner) {
		r.stepper = tui.NewPlainStepper()
		r.render = tui.PlainRenderer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxInputSize bounds a single answer.
func WithMaxInputSize(n int) Option {
	return func(r *Runner) {
		r.maxSize = n
	}
}

// NewRunner creates a Runner over mgr reading from stdin.
func NewRunner(mgr *session.Manager, opts ...Option) *Runner {
	r := &Runner{
		sessions: mgr,
		in:       os.Stdin,
		out:      os.Stdout,
		redactor: redact.Default(),
		logger:   logging.NewNop(),
		maxSize:  input.DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.stepper == nil {
		r.stepper = tui.NewStepper()
	}
	if r.render == nil {
		r.render = tui.NewRenderer()
	}
	return r
}

// Start begins a new session of flow and runs it.
func (r *Runner) Start(ctx context.Context, flow string) (*domain.State, error) {
	state, err := r.sessions.Start(ctx, flow)
	if err != nil {
		return nil, err
	}
	r.system("Session '%s' started.", state.SessionID)
	return r.Run(ctx, state.SessionID)
}

// Run drives sessionID until its flow completes, the user quits or ctx ends.
func (r *Runner) Run(ctx context.Context, sessionID string) (*domain.State, error) {
	prompter := NewPrompter(r.in, r.out, r.maxSize)
	fmt.Fprintln(r.out, helpText)

	for {
		if err := ctx.Err(); err != nil {
			return r.current(sessionID), err
		}

		view, err := r.sessions.View(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		r.show(view)

		if view.Status == domain.StatusComplete {
			state, err := r.sessions.Load(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			r.summary(state)
			return state, nil
		}

		state, err := r.sessions.Load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		command, err := r.collect(ctx, prompter, sessionID, view.Step, state.Payload)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return state, ErrQuit
			}
			return state, err
		}
		if command != "" {
			if err := r.command(ctx, sessionID, command); err != nil {
				if errors.Is(err, ErrQuit) {
					return r.current(sessionID), ErrQuit
				}
				r.problem(err)
			}
			continue
		}

		if view.Step.Async {
			fmt.Fprintln(r.out, r.stepper.Status(domain.View{Status: domain.StatusSubmitting}))
		}
		if _, err := r.sessions.Advance(ctx, sessionID); err != nil {
			r.logger.Debug("advance rejected", "session_id", sessionID, "step", view.Step.ID, "err", err)
			r.problem(err)
		}
	}
}

// collect prompts every field of step. A command typed at any prompt
// interrupts collection and is returned.
func (r *Runner) collect(ctx context.Context, p *Prompter, sessionID string, step domain.StepSpec, payload map[string]any) (string, error) {
	for _, f := range step.Fields {
		for {
			value, isCommand, err := p.Ask(f, payload[f.Key])
			if isCommand {
				return value.(string), nil
			}
			if errors.Is(err, errNoValue) {
				break
			}
			if errors.Is(err, input.ErrTooLarge) || errors.Is(err, input.ErrInvalidUTF8) || errors.Is(err, errBadAnswer) {
				r.problem(err)
				continue
			}
			if err != nil {
				return "", err
			}
			if _, err := r.sessions.SubmitField(ctx, sessionID, f.Key, value); err != nil {
				return "", err
			}
			break
		}
	}
	if len(step.Fields) == 0 {
		line, err := p.Line("  Press enter to continue: ")
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			return strings.TrimSpace(line), nil
		}
	}
	return "", nil
}

func (r *Runner) command(ctx context.Context, sessionID, raw string) error {
	fields := strings.Fields(raw)
	switch fields[0] {
	case ":back", ":b":
		_, err := r.sessions.Retreat(ctx, sessionID)
		return err
	case ":jump", ":j":
		if len(fields) != 2 {
			return fmt.Errorf("usage: :jump N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("usage: :jump N")
		}
		_, err = r.sessions.JumpTo(ctx, sessionID, n-1)
		return err
	case ":reset":
		_, err := r.sessions.Reset(ctx, sessionID)
		return err
	case ":cancel", ":c":
		_, err := r.sessions.Cancel(ctx, sessionID)
		return err
	case ":quit", ":q":
		return ErrQuit
	case ":help", ":h":
		fmt.Fprintln(r.out, helpText)
		return nil
	default:
		return fmt.Errorf("unknown command %s. %s", fields[0], helpText)
	}
}

func (r *Runner) show(view domain.View) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.stepper.Header(view))
	if status := r.stepper.Status(view); status != "" {
		fmt.Fprintln(r.out, status)
	}
	if view.Step.Description != "" {
		text, err := r.render(view.Step.Description)
		if err != nil {
			text = view.Step.Description
		}
		fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
	}
}

func (r *Runner) summary(state *domain.State) {
	masked := r.redactor.Map(state.Payload)
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(r.out, "  %-16s %v\n", k, masked[k])
	}
}

func (r *Runner) problem(err error) {
	var verr *domain.ValidationError
	var aerr *domain.AsyncStepError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(r.out, "  ✗ %v\n", verr.Cause)
	case errors.As(err, &aerr):
		fmt.Fprintf(r.out, "  ✗ %v (try again)\n", aerr.Cause)
	case errors.Is(err, domain.ErrBusy):
		fmt.Fprintf(r.out, "  ✗ %v (type :cancel to abandon it)\n", err)
	default:
		fmt.Fprintf(r.out, "  ✗ %v\n", err)
	}
}

func (r *Runner) system(format string, args ...any) {
	fmt.Fprintf(r.out, ">>> %s\n", fmt.Sprintf(format, args...))
}

func (r *Runner) current(sessionID string) *domain.State {
	state, err := r.sessions.Load(context.Background(), sessionID)
	if err != nil {
		return nil
	}
	return state
}
