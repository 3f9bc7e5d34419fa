package assistant

import "strings"

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// that some models wrap around JSON output. Text without a fence is only
// trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the info string ("json")
		if !strings.ContainsAny(s[:i], "{[") {
			s = s[i+1:]
		}
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
