package rainccmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/realAndi/Rain/internal/ptysession"
	"github.com/realAndi/Rain/internal/vt"
)

func newRunCmd() *cobra.Command {
	var shellPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn a shell session against the real TTY and passthrough raw-mode input/output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(shellPath)
		},
	}
	cmd.Flags().StringVar(&shellPath, "shell", "", "shell to spawn (defaults to detected shell)")
	return cmd
}

func runInteractive(shellPath string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("raincore run: stdin is not a tty")
	}
	fd := int(os.Stdin.Fd())
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("raincore run: get terminal size: %w", err)
	}

	rend := &ttyRenderer{out: os.Stdout}

	sess, err := ptysession.Spawn(ptysession.Options{
		ShellPath: shellPath,
		Rows:      rows,
		Cols:      cols,
	}, rend)
	if err != nil {
		return fmt.Errorf("raincore run: spawn session: %w", err)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		sess.Kill()
		return fmt.Errorf("raincore run: set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)
	defer fmt.Fprint(os.Stdout, "\x1b[0m\r\n")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	go func() {
		for range sigCh {
			c, r, err := term.GetSize(fd)
			if err == nil {
				sess.Resize(r, c)
			}
		}
	}()

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := sess.WriteInput(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	<-rend.done
	return rend.exitErr
}

// ttyRenderer forwards render frames to the real terminal as plain ANSI,
// reconstructing each dirty line's SGR state from its coalesced spans
// rather than replaying the original escape sequences (a lossy but
// sufficient rendering for manual smoke testing).
type ttyRenderer struct {
	out     *os.File
	done    chan struct{}
	exitErr error
}

func (r *ttyRenderer) EmitFrame(f vt.RenderFrame) {
	if r.done == nil {
		r.done = make(chan struct{})
	}
	var b strings.Builder
	for _, dl := range f.DirtyLines {
		fmt.Fprintf(&b, "\x1b[%d;1H\x1b[2K", dl.Row+1)
		for _, sp := range dl.Spans {
			writeSGR(&b, sp)
			b.WriteString(sp.Text)
		}
		b.WriteString("\x1b[0m")
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", f.Cursor.Row+1, f.Cursor.Col+1)
	r.out.WriteString(b.String())
}

func (r *ttyRenderer) EmitSessionEnded(exitCode int, err error) {
	r.exitErr = err
	if r.done == nil {
		r.done = make(chan struct{})
	}
	close(r.done)
}

func writeSGR(b *strings.Builder, sp vt.Span) {
	b.WriteString("\x1b[0")
	if sp.Fg.Kind == vt.ColorRGB {
		fmt.Fprintf(b, ";38;2;%d;%d;%d", sp.Fg.R, sp.Fg.G, sp.Fg.B)
	} else if sp.Fg.Kind == vt.ColorIndexed {
		fmt.Fprintf(b, ";38;5;%d", sp.Fg.Index)
	}
	if sp.Bg.Kind == vt.ColorRGB {
		fmt.Fprintf(b, ";48;2;%d;%d;%d", sp.Bg.R, sp.Bg.G, sp.Bg.B)
	} else if sp.Bg.Kind == vt.ColorIndexed {
		fmt.Fprintf(b, ";48;5;%d", sp.Bg.Index)
	}
	if sp.Attrs&vt.AttrBold != 0 {
		b.WriteString(";1")
	}
	if sp.Attrs&vt.AttrUnderline != 0 {
		b.WriteString(";4")
	}
	b.WriteString("m")
}
