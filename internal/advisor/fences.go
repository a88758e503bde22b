package advisor

import "strings"

// StripFences removes a surrounding markdown code fence from model output.
// Models occasionally wrap the requested JSON in ```json ... ``` despite
// instructions; the payload inside is returned unchanged. Text without a
// fence passes through trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
