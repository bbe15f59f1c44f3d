package ptysession

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/realAndi/Rain/internal/vt"
)

func TestMergeEnvOverridesWinOverBase(t *testing.T) {
	base := []string{"FOO=old", "BAR=keep"}
	out := mergeEnv(base, map[string]string{"FOO": "new"})
	got := strings.Join(out, ",")
	if !strings.Contains(got, "FOO=new") {
		t.Fatalf("override missing: %v", out)
	}
	if strings.Contains(got, "FOO=old") {
		t.Fatalf("old value should have been dropped: %v", out)
	}
	if !strings.Contains(got, "BAR=keep") {
		t.Fatalf("unrelated var should survive: %v", out)
	}
}

func TestChooseCwdFallsBackToHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := chooseCwd(""); got != home && got != "." {
		t.Fatalf("want home dir or '.', got %q", got)
	}
	if got := chooseCwd("/tmp"); got != "/tmp" {
		t.Fatalf("want explicit cwd honored, got %q", got)
	}
}

type collectingEmitter struct {
	mu     sync.Mutex
	frames []vt.RenderFrame
	ended  bool
	code   int
}

func (e *collectingEmitter) EmitFrame(f vt.RenderFrame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = append(e.frames, f)
}

func (e *collectingEmitter) EmitSessionEnded(code int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = true
	e.code = code
}

func (e *collectingEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.frames)
}

// TestSpawnEchoesInput exercises the full lifecycle against /bin/sh: spawn,
// write a command, observe at least one render frame, then kill and expect
// the final SessionEnded notification.
func TestSpawnEchoesInput(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh available in this environment")
	}
	emitter := &collectingEmitter{}
	sess, err := Spawn(Options{ShellPath: "/bin/sh", Rows: 10, Cols: 40}, emitter)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer sess.Kill()

	if _, err := sess.WriteInput([]byte("echo hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for emitter.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a render frame")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sess.Kill()

	emitter.mu.Lock()
	ended := emitter.ended
	emitter.mu.Unlock()
	if !ended {
		t.Fatal("want SessionEnded after Kill")
	}
}
