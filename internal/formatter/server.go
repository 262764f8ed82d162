package formatter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// CodeFormatter reformats a whole Python source text.
type CodeFormatter interface {
	Format(ctx context.Context, code string) (string, error)
}

var ErrStaleServer = errors.New("unable to run because a previously created formatter process has not been properly killed")

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultWaitTimeout  = 3 * time.Second
	stopTimeout         = 2 * time.Second
)

// Launcher starts code server processes and remembers them, so that a new
// server never starts while a previous one is still shutting down.
type Launcher struct {
	PollInterval time.Duration
	WaitTimeout  time.Duration

	mu      sync.Mutex
	started []*ServerProcess
}

// DefaultLauncher is shared by every run of the process.
var DefaultLauncher = &Launcher{}

func (l *Launcher) Start(ctx context.Context, command []string) (*ServerProcess, error) {
	if len(command) == 0 {
		return nil, errors.New("code server command is empty")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.waitPrevious(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("code server stdin: %w", err)
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start code server %q: %w", strings.Join(command, " "), err)
	}
	p := &ServerProcess{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(pr),
		pr:     pr,
		done:   make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		pw.Close()
		close(p.done)
	}()
	l.started = append(l.started, p)
	return p, nil
}

func (l *Launcher) waitPrevious() error {
	poll := l.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	timeout := l.WaitTimeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	for _, p := range l.started {
		deadline := time.Now().Add(timeout)
		for !p.Exited() {
			if time.Now().After(deadline) {
				return ErrStaleServer
			}
			time.Sleep(poll)
		}
	}
	l.started = l.started[:0]
	return nil
}

// ServerProcess speaks newline-delimited JSON: it receives {"code": ...}
// and answers {"result": ...} or {"error": ...}.
type ServerProcess struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	pr      *io.PipeReader
	done    chan struct{}
	waitErr error
}

func (p *ServerProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *ServerProcess) Format(code string) (string, error) {
	if p.Exited() {
		return "", fmt.Errorf("code server exited: %v", p.waitErr)
	}
	req, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return "", err
	}
	if _, err := p.stdin.Write(append(req, '\n')); err != nil {
		return "", fmt.Errorf("send to code server: %w", err)
	}
	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		return "", fmt.Errorf("read from code server: %w", err)
	}
	if !gjson.ValidBytes(line) {
		return "", fmt.Errorf("code server sent an invalid response: %q", strings.TrimSpace(string(line)))
	}
	res := gjson.ParseBytes(line)
	if msg := res.Get("error"); msg.Exists() && msg.String() != "" {
		return "", errors.New(msg.String())
	}
	result := res.Get("result")
	if !result.Exists() {
		return "", fmt.Errorf("code server response has no result: %q", strings.TrimSpace(string(line)))
	}
	return result.String(), nil
}

// Stop closes the server input and waits for it to exit, killing it when it
// does not exit in time.
func (p *ServerProcess) Stop() error {
	_ = p.pr.Close()
	_ = p.stdin.Close()
	select {
	case <-p.done:
	case <-time.After(stopTimeout):
		_ = p.cmd.Process.Kill()
		<-p.done
	}
	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return p.waitErr
	}
	return nil
}

// ServerFormatter starts its process on the first Format call. Close must
// run on every exit path of the run that owns it.
type ServerFormatter struct {
	Command  []string
	Launcher *Launcher
	Logger   *slog.Logger

	proc     *ServerProcess
	startErr error
}

func NewServerFormatter(command []string, launcher *Launcher, logger *slog.Logger) *ServerFormatter {
	if launcher == nil {
		launcher = DefaultLauncher
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerFormatter{Command: command, Launcher: launcher, Logger: logger}
}

func (s *ServerFormatter) Format(ctx context.Context, code string) (string, error) {
	if s.startErr != nil {
		return "", s.startErr
	}
	if s.proc == nil {
		s.Logger.Debug("starting code server", slog.String("command", strings.Join(s.Command, " ")))
		proc, err := s.Launcher.Start(ctx, s.Command)
		if err != nil {
			s.startErr = err
			return "", err
		}
		s.proc = proc
	}
	return s.proc.Format(code)
}

func (s *ServerFormatter) Started() bool { return s.proc != nil }

func (s *ServerFormatter) Close() error {
	if s.proc == nil {
		return nil
	}
	s.Logger.Debug("stopping code server")
	err := s.proc.Stop()
	s.proc = nil
	return err
}
