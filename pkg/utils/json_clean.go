package utils

import "strings"

var llmPrefixes = []string{
	"Here's the JSON:",
	"Here is the JSON:",
	"JSON:",
}

// CleanJSONResponse strips markdown fences and chatter around the first
// JSON object or array in s.
func CleanJSONResponse(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	for _, prefix := range llmPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if end := findMatchingClose(s, objStart, '{', '}'); end != -1 {
			s = s[objStart : end+1]
		}
	case arrStart != -1:
		if end := findMatchingClose(s, arrStart, '[', ']'); end != -1 {
			s = s[arrStart : end+1]
		}
	}
	return strings.TrimSpace(s)
}

// findMatchingClose returns the index closing the bracket at start, skipping
// brackets inside strings, or -1.
func findMatchingClose(s string, start int, open, close byte) int {
	if start >= len(s) || s[start] != open {
		return -1
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
