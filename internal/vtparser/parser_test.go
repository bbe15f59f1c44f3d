package vtparser

import (
	"strings"
	"testing"
)

type recorder struct {
	printed []rune
	exec    []byte
	csi     []string
	esc     []string
	osc     [][]string
	hooked  bool
	put     []byte
	unhooks int
}

func (r *recorder) Print(ru rune) { r.printed = append(r.printed, ru) }
func (r *recorder) Execute(b byte) { r.exec = append(r.exec, b) }
func (r *recorder) CsiDispatch(action byte, params []int, intermeds []byte, prefix byte) {
	s := string(action)
	if prefix != 0 {
		s = string(prefix) + s
	}
	for _, p := range params {
		s += "," + itoa(p)
	}
	r.csi = append(r.csi, s)
}
func (r *recorder) EscDispatch(final byte, intermeds []byte) {
	r.esc = append(r.esc, string(intermeds)+string(final))
}
func (r *recorder) OscDispatch(params [][]byte) {
	var fields []string
	for _, f := range params {
		fields = append(fields, string(f))
	}
	r.osc = append(r.osc, fields)
}
func (r *recorder) Hook(params []int, intermeds []byte, action byte) { r.hooked = true }
func (r *recorder) Put(b byte)                                       { r.put = append(r.put, b) }
func (r *recorder) Unhook()                                          { r.unhooks++ }

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte('0' + v%10)}, b...)
		v /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func run(s string) *recorder {
	p := New()
	r := &recorder{}
	p.AdvanceBytes(r, []byte(s))
	return r
}

func TestPrintPlainText(t *testing.T) {
	r := run("hello")
	if string(r.printed) != "hello" {
		t.Fatalf("got %q", string(r.printed))
	}
}

func TestExecuteC0(t *testing.T) {
	r := run("a\rb\n")
	if string(r.printed) != "ab" {
		t.Fatalf("got printed %q", string(r.printed))
	}
	if len(r.exec) != 2 || r.exec[0] != '\r' || r.exec[1] != '\n' {
		t.Fatalf("got exec %v", r.exec)
	}
}

func TestCsiSGR(t *testing.T) {
	r := run("\x1b[1;31m")
	if len(r.csi) != 1 || r.csi[0] != "m,1,31" {
		t.Fatalf("got %v", r.csi)
	}
}

func TestCsiPrivateMode(t *testing.T) {
	r := run("\x1b[?25h")
	if len(r.csi) != 1 || r.csi[0] != "?h,25" {
		t.Fatalf("got %v", r.csi)
	}
}

func TestCsiDefaultParam(t *testing.T) {
	r := run("\x1b[m")
	if len(r.csi) != 1 {
		t.Fatalf("want 1 csi, got %v", r.csi)
	}
}

func TestEscDispatch(t *testing.T) {
	r := run("\x1bc")
	if len(r.esc) != 1 || r.esc[0] != "c" {
		t.Fatalf("got %v", r.esc)
	}
}

func TestEscWithIntermediate(t *testing.T) {
	r := run("\x1b(B")
	if len(r.esc) != 1 || r.esc[0] != "(B" {
		t.Fatalf("got %v", r.esc)
	}
}

func TestOscTitleTerminatedByBEL(t *testing.T) {
	r := run("\x1b]0;hello world\x07")
	if len(r.osc) != 1 || r.osc[0][0] != "0" || r.osc[0][1] != "hello world" {
		t.Fatalf("got %v", r.osc)
	}
}

func TestOscTerminatedByST(t *testing.T) {
	r := run("\x1b]2;title\x1b\\")
	if len(r.osc) != 1 || r.osc[0][1] != "title" {
		t.Fatalf("got %v", r.osc)
	}
}

func TestOscPayloadWithEmbeddedSemicolons(t *testing.T) {
	r := run("\x1b]52;c;d2FzZA==\x07")
	if len(r.osc) != 1 {
		t.Fatalf("got %v", r.osc)
	}
	if r.osc[0][0] != "52" || r.osc[0][1] != "c;d2FzZA==" {
		t.Fatalf("only first ; should split: got %v", r.osc[0])
	}
}

func TestDcsHookPutUnhook(t *testing.T) {
	r := run("\x1bP1$r\x1b\\")
	if !r.hooked {
		t.Fatal("want hooked")
	}
	if r.unhooks != 1 {
		t.Fatalf("want 1 unhook, got %d", r.unhooks)
	}
}

func TestDcsPutAccumulatesPayload(t *testing.T) {
	r := run("\x1bP+q" + strings.Repeat("41", 3) + "\x1b\\")
	if len(r.put) != 6 {
		t.Fatalf("want 6 bytes put, got %d", len(r.put))
	}
}

func TestMultiByteUTF8Print(t *testing.T) {
	r := run("café")
	if string(r.printed) != "café" {
		t.Fatalf("got %q", string(r.printed))
	}
}

func TestWideCJKPrint(t *testing.T) {
	r := run("中文")
	if string(r.printed) != "中文" {
		t.Fatalf("got %q", string(r.printed))
	}
}

func TestMalformedCsiRecoversOnFinalByte(t *testing.T) {
	r := run("\x1b[999999999999999999zOK")
	if string(r.printed) != "OK" {
		t.Fatalf("parser should recover and print OK, got %q", string(r.printed))
	}
}

func TestCANAbortsSequence(t *testing.T) {
	r := run("\x1b[31\x18m")
	if len(r.csi) != 0 {
		t.Fatalf("CAN should abort the CSI sequence entirely, got %v", r.csi)
	}
	if len(r.printed) != 1 || r.printed[0] != 'm' {
		t.Fatalf("'m' after CAN should print in ground state, got %v", r.printed)
	}
}
