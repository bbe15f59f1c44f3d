package tmuxctl

import "strings"

// DecodeOctal reverses tmux control mode's %output payload encoding: each
// non-printable or backslash byte is written as a 3-digit octal escape
// (`\NNN`); a literal backslash is doubled (`\\`).
func DecodeOctal(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\\' {
			out = append(out, '\\')
			i++
			continue
		}
		if i+3 < len(s) && isOctalDigit(s[i+1]) && isOctalDigit(s[i+2]) && isOctalDigit(s[i+3]) {
			v := (int(s[i+1]-'0'))*64 + (int(s[i+2]-'0'))*8 + int(s[i+3]-'0')
			out = append(out, byte(v))
			i += 3
			continue
		}
		// Malformed escape: keep the backslash literally rather than
		// silently dropping bytes.
		out = append(out, '\\')
	}
	return out
}

func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

// LineKind classifies one line of tmux control-mode stdout.
type LineKind uint8

const (
	LineUnknown LineKind = iota
	LineOutput
	LineLayoutChange
	LineWindowAdd
	LineWindowClose
	LineWindowRenamed
	LineSessionChanged
	LineBegin
	LineEnd
	LineError
	LineExit
)

// ClassifiedLine is a parsed tmux control-mode protocol line.
type ClassifiedLine struct {
	Kind LineKind

	PaneID    int
	WindowID  int
	Layout    string
	Name      string
	ExitText  string

	// %begin/%end/%error fields: timestamp, command number, flags.
	Timestamp int
	CmdNumber int
}

// Classify parses one line of tmux -CC stdout into a ClassifiedLine.
func Classify(line string) ClassifiedLine {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ClassifiedLine{Kind: LineUnknown}
	}
	switch fields[0] {
	case "%output":
		if len(fields) < 2 {
			return ClassifiedLine{Kind: LineUnknown}
		}
		paneID := parsePaneRef(fields[1])
		data := ""
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			if idx2 := strings.IndexByte(line[idx+1:], ' '); idx2 >= 0 {
				data = line[idx+1+idx2+1:]
			}
		}
		return ClassifiedLine{Kind: LineOutput, PaneID: paneID, Name: data}
	case "%layout-change":
		if len(fields) < 3 {
			return ClassifiedLine{Kind: LineUnknown}
		}
		return ClassifiedLine{Kind: LineLayoutChange, WindowID: parsePaneRef(fields[1]), Layout: fields[2]}
	case "%window-add":
		return ClassifiedLine{Kind: LineWindowAdd, WindowID: parsePaneRefSafe(fields, 1)}
	case "%window-close":
		return ClassifiedLine{Kind: LineWindowClose, WindowID: parsePaneRefSafe(fields, 1)}
	case "%window-renamed":
		name := ""
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		return ClassifiedLine{Kind: LineWindowRenamed, WindowID: parsePaneRefSafe(fields, 1), Name: name}
	case "%session-changed":
		name := ""
		if len(fields) > 2 {
			name = fields[2]
		}
		return ClassifiedLine{Kind: LineSessionChanged, Name: name}
	case "%begin":
		return ClassifiedLine{Kind: LineBegin, Timestamp: atoiSafe(fields, 1), CmdNumber: atoiSafe(fields, 2)}
	case "%end":
		return ClassifiedLine{Kind: LineEnd, Timestamp: atoiSafe(fields, 1), CmdNumber: atoiSafe(fields, 2)}
	case "%error":
		return ClassifiedLine{Kind: LineError, Timestamp: atoiSafe(fields, 1), CmdNumber: atoiSafe(fields, 2)}
	case "%exit":
		reason := ""
		if len(fields) > 1 {
			reason = strings.Join(fields[1:], " ")
		}
		return ClassifiedLine{Kind: LineExit, ExitText: reason}
	default:
		return ClassifiedLine{Kind: LineUnknown}
	}
}

func parsePaneRef(field string) int {
	field = strings.TrimLeft(field, "%@$")
	v := 0
	for _, c := range field {
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int(c-'0')
	}
	return v
}

func parsePaneRefSafe(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	return parsePaneRef(fields[i])
}

func atoiSafe(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	v := 0
	for _, c := range fields[i] {
		if c < '0' || c > '9' {
			return 0
		}
		v = v*10 + int(c-'0')
	}
	return v
}
