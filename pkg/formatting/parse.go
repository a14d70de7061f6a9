package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when model output cannot be parsed as JSON,
// either directly, from a markdown code fence, or from its outermost braces.
var ErrParseFailed = errors.New("failed to parse response")

var (
	jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")
	pairRegex      = regexp.MustCompile(`^\s*["']?([^"':=]+?)["']?\s*[:=]\s*["']?(.*?)["']?\s*,?\s*$`)
)

// Parse unmarshals model output into T. Models often wrap JSON in a markdown
// fence or surround it with prose, so after a direct attempt it retries with
// the fenced block and then with the outermost {...} span.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range jsonCandidates(content) {
		var attempt T
		if err := json.Unmarshal([]byte(candidate), &attempt); err == nil {
			return attempt, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 200))
}

func jsonCandidates(content string) []string {
	candidates := []string{content}

	if m := jsonBlockRegex.FindStringSubmatch(content); len(m) >= 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	return candidates
}

// Pair is a key/value line recovered from unstructured model output.
type Pair struct {
	Key   string
	Value string
}

// ParsePairs scans content line by line for "key: value" or "key = value"
// entries, in order. Quotes around keys and values are dropped, as are
// markdown list markers. Lines with an empty key or value are skipped.
func ParsePairs(content string) []Pair {
	var pairs []Pair
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.ReplaceAll(line, "**", "")

		m := pairRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
