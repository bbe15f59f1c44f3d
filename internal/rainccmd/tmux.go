package rainccmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/realAndi/Rain/internal/tmuxctl"
	"github.com/realAndi/Rain/internal/vt"
)

func newTmuxCmd() *cobra.Command {
	var target, tmuxPath string
	cmd := &cobra.Command{
		Use:   "tmux",
		Short: "Attach to a tmux -CC control-mode session and print parsed events as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTmux(tmuxPath, target)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "tmux session to attach to (defaults to new-session)")
	cmd.Flags().StringVar(&tmuxPath, "tmux", "tmux", "tmux binary to exec")
	return cmd
}

func runTmux(tmuxPath, target string) error {
	emitter := &ndjsonEmitter{enc: json.NewEncoder(os.Stdout)}
	ctl, err := tmuxctl.Attach(tmuxPath, target, emitter, nil)
	if err != nil {
		return fmt.Errorf("raincore tmux: %w", err)
	}
	defer ctl.Close()

	if err := ctl.Bootstrap(); err != nil {
		return fmt.Errorf("raincore tmux: bootstrap: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return ctl.Detach()
}

// ndjsonEmitter implements tmuxctl.PaneEmitter by printing one JSON object
// per event to stdout, so a human (or another process piping this
// command's output) can watch the control session live.
type ndjsonEmitter struct {
	enc *json.Encoder
}

func (e *ndjsonEmitter) emit(kind string, fields map[string]any) {
	fields["kind"] = kind
	e.enc.Encode(fields)
}

func (e *ndjsonEmitter) EmitPaneFrame(paneID int, f vt.RenderFrame) {
	e.emit("pane_frame", map[string]any{
		"pane_id":   paneID,
		"frame_seq": f.FrameSeq,
		"dirty":     len(f.DirtyLines),
		"cursor_row": f.Cursor.Row,
		"cursor_col": f.Cursor.Col,
	})
}

func (e *ndjsonEmitter) EmitLayout(windowID int, root *tmuxctl.LayoutNode) {
	leaves := tmuxctl.CollectLeafPanes(root)
	panes := make([]map[string]any, len(leaves))
	for i, l := range leaves {
		panes[i] = map[string]any{"pane_id": l.PaneID, "session_id": l.SessionID}
	}
	e.emit("layout_change", map[string]any{"window_id": windowID, "panes": panes})
}

func (e *ndjsonEmitter) EmitWindowAdd(windowID int) {
	e.emit("window_add", map[string]any{"window_id": windowID})
}

func (e *ndjsonEmitter) EmitWindowClose(windowID int) {
	e.emit("window_close", map[string]any{"window_id": windowID})
}

func (e *ndjsonEmitter) EmitWindowRenamed(windowID int, name string) {
	e.emit("window_renamed", map[string]any{"window_id": windowID, "name": name})
}

func (e *ndjsonEmitter) EmitSessionChanged(name string) {
	e.emit("session_changed", map[string]any{"name": name})
}

func (e *ndjsonEmitter) EmitPaneAdded(paneID int, sessionID string) {
	e.emit("pane_added", map[string]any{"pane_id": paneID, "session_id": sessionID})
}

func (e *ndjsonEmitter) EmitPaneRemoved(paneID int) {
	e.emit("pane_removed", map[string]any{"pane_id": paneID})
}

func (e *ndjsonEmitter) EmitStarted(sessionName string, paneIDs []int) {
	e.emit("started", map[string]any{"session_name": sessionName, "panes": paneIDs})
}

func (e *ndjsonEmitter) EmitExit(reason string) {
	e.emit("exit", map[string]any{"reason": reason})
}
