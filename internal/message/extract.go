package message

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// telLink matches the messenger's auto-linked phone numbers,
// e.g. [031-896-6626](tel:031-896-6626).
var telLink = regexp.MustCompile(`\[([^\]]*)\]\(tel:[^)]*\)`)

// labelValue returns the trimmed value following the given label on a label
// line. The label must match the text before the first colon exactly, ignoring
// any internal or surrounding whitespace; both ASCII ":" and full-width "："
// are accepted. It reports false when the line carries no colon or a
// different label.
func labelValue(line, label string) (string, bool) {
	idx := strings.IndexAny(line, ":：")
	if idx < 0 {
		return "", false
	}
	if stripSpaces(line[:idx]) != stripSpaces(label) {
		return "", false
	}
	_, width := utf8.DecodeRuneInString(line[idx:])
	return strings.TrimSpace(line[idx+width:]), true
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// unwrapTel extracts the visible text from a markdown-style tel link,
// discarding the link target. Values without a link pass through trimmed.
func unwrapTel(value string) string {
	if m := telLink.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(value)
}

// splitContactName splits a combined "연락처 / 성함" value. The left part is
// the contact (tel-link unwrapped); the right part, when present, is the
// contact name.
func splitContactName(value string) (contact, name string) {
	parts := strings.SplitN(value, "/", 2)
	contact = unwrapTel(parts[0])
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	return contact, name
}
