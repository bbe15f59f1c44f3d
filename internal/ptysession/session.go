// Package ptysession owns the PTY master/child lifecycle for one terminal
// session: spawning the shell, a reader goroutine that feeds bytes into a
// shared vt.State, and a render-pump goroutine that samples the state at a
// bounded cadence and hands frames to an emitter. Grounded throughout on
// dcosson-h2/internal/session/virtualterminal/vt.go's VT type.
package ptysession

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/gofrs/flock"

	"github.com/realAndi/Rain/internal/rainerr"
	"github.com/realAndi/Rain/internal/rainlog"
	"github.com/realAndi/Rain/internal/shelldetect"
	"github.com/realAndi/Rain/internal/vt"
)

const (
	renderCadence  = 16 * time.Millisecond
	killGracePeriod = 200 * time.Millisecond
	readBufSize    = 4096
	ptyWriteTimeout = 2 * time.Second
)

// Emitter is the external collaborator a render pump publishes frames and
// the terminal end-of-life notification to — the GUI/display layer on the
// other side of this package's boundary.
type Emitter interface {
	EmitFrame(vt.RenderFrame)
	EmitSessionEnded(exitCode int, err error)
}

// Options configures spawn_session.
type Options struct {
	ShellPath string
	Cwd       string
	Rows      int
	Cols      int
	Env       map[string]string
	TmuxMode  string // "integrated" | "native" | ""
	Logger    *slog.Logger
}

// Session is the PTY layer's Session: master/child ownership, the shared
// vt.State, reader + render-pump goroutines, resize/kill.
type Session struct {
	master *os.File
	cmd    *exec.Cmd

	mu    sync.Mutex
	state *vt.State

	running atomic.Bool
	waker   chan struct{}

	emitter Emitter
	logger  *slog.Logger

	tempPaths []string
	lockFile  *flock.Flock

	exitMu   sync.Mutex
	exitCode int
	exitErr  error
	reapOnce sync.Once

	wg sync.WaitGroup
}

// Spawn starts a new shell session per §4.5: detect shell, allocate a PTY,
// seed environment, inject the shell's init hook if available, spawn the
// child, and start the reader + render-pump goroutines.
func Spawn(opts Options, emitter Emitter) (*Session, error) {
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	logger := opts.Logger
	if logger == nil {
		logger = rainlog.Discard()
	}

	shell := shelldetect.Shell{Path: opts.ShellPath}
	if shell.Path == "" {
		shell = shelldetect.Detect()
	}
	if _, err := os.Stat(shell.Path); err != nil {
		shell = shelldetect.Detect()
		if _, err := os.Stat(shell.Path); err != nil {
			return nil, rainerr.ErrShellNotFound
		}
	}

	tmuxMode := opts.TmuxMode
	if tmuxMode == "" {
		tmuxMode = "integrated"
	}

	env := map[string]string{
		"TERM":                 "xterm-256color",
		"COLORTERM":            "truecolor",
		"TERM_PROGRAM":         "Rain",
		"TERM_PROGRAM_VERSION": "1.0",
		"RAIN_TMUX_MODE":       tmuxMode,
		"LANG":                 envOrDefault("LANG", "en_US.UTF-8"),
		"LC_ALL":               envOrDefault("LC_ALL", "en_US.UTF-8"),
	}
	for k, v := range opts.Env {
		env[k] = v
	}

	lockDir, lock, err := acquireSessionLock()
	if err != nil {
		logger.Warn("session lock unavailable, continuing without it", "err", err)
	}

	args, tempPaths := buildShellInvocation(shell, env, logger)
	if lockDir != "" {
		tempPaths = append(tempPaths, lockDir)
	}

	cmd := exec.Command(shell.Path, args...)
	cmd.Dir = chooseCwd(opts.Cwd)
	cmd.Env = mergeEnv(os.Environ(), env)
	setProcAttrNewGroup(cmd)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(opts.Rows), Cols: uint16(opts.Cols)})
	if err != nil {
		cleanupPaths(tempPaths)
		if lock != nil {
			lock.Unlock()
		}
		return nil, fmt.Errorf("ptysession: start shell: %w", err)
	}

	s := &Session{
		master:    master,
		cmd:       cmd,
		state:     vt.New(opts.Rows, opts.Cols, 0),
		waker:     make(chan struct{}, 1),
		emitter:   emitter,
		logger:    logger,
		tempPaths: tempPaths,
		lockFile:  lock,
	}
	s.running.Store(true)

	s.wg.Add(2)
	go s.readLoop()
	go s.renderPump()

	return s, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func chooseCwd(cwd string) string {
	if cwd != "" {
		return cwd
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, e := range base {
		key := e
		if idx := strings.IndexByte(e, '='); idx >= 0 {
			key = e[:idx]
		}
		if _, overridden := overrides[key]; !overridden {
			out = append(out, e)
		}
	}
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	return out
}

func buildShellInvocation(shell shelldetect.Shell, env map[string]string, logger *slog.Logger) ([]string, []string) {
	hook, ok := shelldetect.BuildInitHook(shell, "", "")
	if !ok {
		if shell.Kind != shelldetect.Cmd && shell.Kind != shelldetect.Unknown {
			return []string{"--login"}, nil
		}
		return nil, nil
	}
	for k, v := range hook.Env {
		env[k] = v
	}
	var temps []string
	if hook.TempDir != "" {
		temps = append(temps, hook.TempDir)
	}
	return hook.Args, temps
}

func cleanupPaths(paths []string) {
	for _, p := range paths {
		os.RemoveAll(p)
	}
}

// acquireSessionLock creates a per-session temp directory for shell-init
// scratch files and advisory-locks it, preventing two goroutines/processes
// from racing over the same directory the way dcosson-h2's internal/cmd
// locks its working directory (same concern, different directory).
func acquireSessionLock() (string, *flock.Flock, error) {
	dir, err := os.MkdirTemp("", "rain-session-")
	if err != nil {
		return "", nil, err
	}
	lock := flock.New(dir + ".lock")
	ok, err := lock.TryLock()
	if err != nil || !ok {
		return dir, nil, errors.New("ptysession: could not acquire session lock")
	}
	return dir, lock, nil
}

// WriteInput writes raw bytes to the PTY master with a timeout, per dcosson-h2's WritePTY: the write itself runs
// in a goroutine so the caller can give up on a hung child rather than
// block forever on a full kernel PTY buffer.
func (s *Session) WriteInput(p []byte) (int, error) {
	if !s.running.Load() {
		return 0, rainerr.ErrSessionClosed
	}
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := s.master.Write(p)
		ch <- result{n, err}
	}()
	timer := time.NewTimer(ptyWriteTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-timer.C:
		return 0, rainerr.ErrPTYWriteTimeout
	}
}

// Paste writes text wrapped in bracketed-paste markers when the mode is
// active, otherwise writes it raw.
func (s *Session) Paste(text string) (int, error) {
	s.mu.Lock()
	bracketed := s.state.BracketedPasteActive()
	s.mu.Unlock()
	if !bracketed {
		return s.WriteInput([]byte(text))
	}
	return s.WriteInput([]byte("\x1b[200~" + text + "\x1b[201~"))
}

// Resize mutates terminal dimensions before telling the kernel PTY, so no
// bytes arrive pre-resize and get parsed against stale dimensions.
func (s *Session) Resize(rows, cols int) {
	s.mu.Lock()
	s.state.Resize(rows, cols)
	s.mu.Unlock()
	pty.Setsize(s.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	s.signalWaker()
}

func (s *Session) signalWaker() {
	select {
	case s.waker <- struct{}{}:
	default:
	}
}

// Kill tears the session down per §4.5/§5: stop the running flag, wake the
// render pump, ask the child to hang up, give it 200ms, force-kill the
// process group, close the master (unblocking the reader), join both
// goroutines, and remove temp scratch paths.
func (s *Session) Kill() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.signalWaker()

	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(syscall.SIGHUP)
	}

	done := make(chan struct{})
	go func() {
		s.reapProcess(nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(killGracePeriod):
		killProcessGroup(s.cmd)
	}

	s.master.Close()
	s.wg.Wait()

	if s.lockFile != nil {
		s.lockFile.Unlock()
	}
	cleanupPaths(s.tempPaths)
}

func (s *Session) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, readBufSize)
	for s.running.Load() {
		n, err := s.master.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.state.Write(buf[:n])
			resp := s.state.DrainResponses()
			s.mu.Unlock()
			if len(resp) > 0 {
				s.master.Write(resp)
			}
			s.signalWaker()
		}
		if err != nil {
			s.reapProcess(err)
			s.running.Store(false)
			s.signalWaker()
			return
		}
	}
}

// reapProcess waits on the child exactly once, however many call sites race
// to report the exit: readLoop's read error and Kill's grace-period
// watcher both want to know the exit status, but the OS only lets one
// Wait call actually reap the process — a second reap returns "no child
// processes" and would otherwise stomp a real exit code with that error.
// sync.Once makes whichever caller arrives first the sole reaper.
func (s *Session) reapProcess(readErr error) {
	s.reapOnce.Do(func() {
		s.exitMu.Lock()
		defer s.exitMu.Unlock()
		if s.cmd.ProcessState != nil {
			s.exitCode = s.cmd.ProcessState.ExitCode()
			return
		}
		if err := s.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				s.exitCode = exitErr.ExitCode()
			} else if !errors.Is(readErr, io.EOF) {
				s.exitErr = err
			}
		} else if s.cmd.ProcessState != nil {
			s.exitCode = s.cmd.ProcessState.ExitCode()
		}
	})
}

// renderPump implements §4.6: a 16ms-cadence, try-lock, coalescing sampler
// that publishes non-empty snapshots and performs one final drain-and-emit
// after running drops to false.
func (s *Session) renderPump() {
	defer s.wg.Done()
	lastEmit := time.Now().Add(-renderCadence)
	for {
		<-s.waker
		s.drainWaker()

		if elapsed := time.Since(lastEmit); elapsed < renderCadence {
			time.Sleep(renderCadence - elapsed)
		}

		for !s.tryEmit() {
			// Parser held the lock; retry shortly rather than block, so
			// the reader is never starved.
			time.Sleep(time.Millisecond)
		}
		lastEmit = time.Now()

		if !s.running.Load() {
			s.finalEmitAndNotify()
			return
		}
	}
}

func (s *Session) drainWaker() {
	for {
		select {
		case <-s.waker:
		default:
			return
		}
	}
}

func (s *Session) finalEmitAndNotify() {
	for !s.tryEmit() {
		time.Sleep(time.Millisecond)
	}
	s.exitMu.Lock()
	code, err := s.exitCode, s.exitErr
	s.exitMu.Unlock()
	s.emitter.EmitSessionEnded(code, err)
}

func (s *Session) tryEmit() bool {
	if !s.mu.TryLock() {
		return false
	}
	frame, ok := s.state.TakeRenderSnapshot()
	s.mu.Unlock()
	if ok {
		s.emitter.EmitFrame(frame)
	}
	return true
}

// GetTextRange exposes vt.State.GetTextRange under the session's lock.
func (s *Session) GetTextRange(start, end int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetTextRange(start, end)
}
