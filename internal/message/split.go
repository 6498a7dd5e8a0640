package message

import (
	"strings"
)

// defaultMarkers are the bullet glyphs the messenger formats have used to
// open a section. Any of them may appear mid-line.
var defaultMarkers = []string{"■", "●", "◾", "▪"}

// memoMarker opens the internal memo region in the formats that label it.
const memoMarker = "내부메모"

// segment is one main-region unit: a label line plus any free-text
// continuation lines. Only the inquiry field consumes continuations.
type segment struct {
	line string
	rest []string
}

type sections struct {
	main []segment
	memo []string
}

// splitSections cuts raw message text into the customer-facing main region
// and the optional internal memo region, then segments each. It never fails;
// unrecognized structure just yields fewer segments.
func splitSections(raw string, markers []string) sections {
	if len(markers) == 0 {
		markers = defaultMarkers
	}
	mainText, memoText := splitMemo(raw)
	return sections{
		main: splitMain(mainText, markers),
		memo: splitMemoLines(memoText),
	}
}

// splitMemo finds the memo boundary: a repeated-dash divider line wins over
// the literal memo marker; with neither, the whole input is main text.
func splitMemo(raw string) (string, string) {
	lines := strings.Split(raw, "\n")
	boundary := -1
	for i, line := range lines {
		if isDashDivider(strings.TrimSpace(line)) {
			boundary = i
			break
		}
	}
	if boundary < 0 {
		for i, line := range lines {
			if isMemoMarker(line) {
				boundary = i
				break
			}
		}
	}
	if boundary < 0 {
		return raw, ""
	}
	return strings.Join(lines[:boundary], "\n"), strings.Join(lines[boundary+1:], "\n")
}

// isMemoMarker matches memo header lines like "내부메모)" or "[ 내부메모 ]".
// A line that merely mentions the word mid-sentence is not a boundary.
func isMemoMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "[") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "["))
	}
	return strings.HasPrefix(trimmed, memoMarker)
}

func isDashDivider(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != '-' && r != '─' {
			return false
		}
	}
	return true
}

func splitMain(text string, markers []string) []segment {
	if containsAny(text, markers) {
		return splitOnMarkers(text, markers)
	}
	return splitOnLines(text)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// splitOnMarkers cuts the text at every marker occurrence, including inline
// ones. Each chunk keeps its first line as the label line and the remaining
// non-empty lines as free text.
func splitOnMarkers(text string, markers []string) []segment {
	pairs := make([]string, 0, len(markers)*2)
	for _, m := range markers {
		pairs = append(pairs, m, "\x00")
	}
	cut := strings.NewReplacer(pairs...).Replace(text)
	var segs []segment
	for _, chunk := range strings.Split(cut, "\x00") {
		if seg, ok := newSegment(chunk); ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

// splitOnLines handles the marker-less formats: every line that carries a
// colon opens a segment; lines without one attach to the previous segment as
// free text, which is how a multi-line 문의내용 body arrives.
func splitOnLines(text string) []segment {
	var segs []segment
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.ContainsAny(trimmed, ":：") && len(segs) > 0 {
			if keepContinuation(trimmed) {
				segs[len(segs)-1].rest = append(segs[len(segs)-1].rest, trimmed)
			}
			continue
		}
		segs = append(segs, segment{line: trimmed})
	}
	return segs
}

func newSegment(chunk string) (segment, bool) {
	lines := strings.Split(chunk, "\n")
	var seg segment
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if seg.line == "" {
			seg.line = trimmed
			continue
		}
		if keepContinuation(trimmed) {
			seg.rest = append(seg.rest, trimmed)
		}
	}
	return seg, seg.line != ""
}

// keepContinuation drops bracketed header lines like "[현장문의]" from free
// text, matching how the upstream formats use them as titles.
func keepContinuation(line string) bool {
	return !strings.HasPrefix(line, "[")
}

// splitMemoLines returns the memo region line by line, each stripped of an
// optional leading list bullet.
func splitMemoLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "- ")
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
