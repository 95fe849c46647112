package upstream

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")
	markerPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
)

// ParseTexts extracts the list of texts from raw model output. It accepts a JSON
// array, a JSON object with a "texts" array, either of those inside a fenced
// code block, or a plain bulleted/numbered list. Blank and repeated entries are
// dropped; order is kept.
func ParseTexts(output string) []string {
	body := strings.TrimSpace(output)
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}

	if texts, ok := parseJSON(body); ok {
		return distinct(texts)
	}
	if start, end := strings.Index(body, "["), strings.LastIndex(body, "]"); start >= 0 && end > start {
		if texts, ok := parseJSON(body[start : end+1]); ok {
			return distinct(texts)
		}
	}
	return distinct(parseLines(body))
}

func parseJSON(body string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		var wrapped struct {
			Texts []any `json:"texts"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil || wrapped.Texts == nil {
			return nil, false
		}
		items = wrapped.Texts
	}
	texts := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			texts = append(texts, v)
		case nil:
		default:
			texts = append(texts, fmt.Sprint(v))
		}
	}
	return texts, true
}

func parseLines(body string) []string {
	var texts []string
	for _, line := range strings.Split(body, "\n") {
		line = markerPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ",")
		line = strings.Trim(line, `"'`)
		texts = append(texts, line)
	}
	return texts
}

func distinct(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
