package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	quotedRe      = regexp.MustCompile(`"([^"\n]+)"`)
	enumerationRe = regexp.MustCompile(`^\s*(?:\d+\s*[.):]|[-*•])\s*`)
)

// Extract turns free-form model output into exactly Count suggestions. It
// never panics; any parse failure yields Fallback(k).
func Extract(raw string, k Kind) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			out = Fallback(k)
		}
	}()

	candidates, err := candidates(raw)
	if err != nil {
		return Fallback(k)
	}
	return normalize(candidates, k)
}

// candidates runs the parse chain: JSON array, then quoted substrings, then
// question lines.
func candidates(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var arr []string
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, fmt.Errorf("parse suggestion array: %w", err)
		}
		return arr, nil
	}

	if matches := quotedRe.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			out = append(out, m[1])
		}
		return out, nil
	}

	var out []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(enumerationRe.ReplaceAllString(line, ""))
		if strings.HasSuffix(line, "?") {
			out = append(out, line)
		}
		if len(out) == Count {
			break
		}
	}
	return out, nil
}

// normalize trims, drops blanks and duplicates, truncates to Count and pads
// from the k pool.
func normalize(in []string, k Kind) []string {
	out := make([]string, 0, Count)
	seen := make(map[string]bool, Count)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || len(out) == Count {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range in {
		add(s)
	}
	for _, s := range Fallback(k) {
		add(s)
	}
	return out
}
