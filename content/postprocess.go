package content

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	markdownLink   = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	underscorePair = regexp.MustCompile(`_([^_]+)_`)
)

// truncateHashCap is how many trailing hashtags survive truncation.
const truncateHashCap = 3

// PostProcess turns a raw model completion into postable text: JSON
// envelopes are unwrapped, markdown and HTML are stripped, and the
// result is truncated to limit. Non-blank input never comes out empty.
func PostProcess(raw string, limit int) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = unwrapJSON(s)
	s = StripMarkdown(s)
	if strings.ContainsRune(s, '<') {
		s = stripHTML(s)
	}
	s = strings.TrimSpace(s)
	s = SmartTruncate(s, limit)

	if s == "" {
		// Stripping consumed everything; fall back to the raw text so
		// the caller never publishes a blank post.
		s = SmartTruncate(strings.TrimSpace(raw), limit)
	}
	return s
}

// unwrapJSON flattens a {"content": ..., "hashtags": [...]} completion
// into plain text with the hashtags re-appended. Models occasionally
// answer in that shape despite the prompt.
func unwrapJSON(s string) string {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return s
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return s
	}
	inner, ok := parsed["content"].(string)
	if !ok {
		return s
	}

	if rawTags, ok := parsed["hashtags"]; ok {
		var tags []string
		switch v := rawTags.(type) {
		case []any:
			for _, t := range v {
				if ts, ok := t.(string); ok && ts != "" {
					tags = append(tags, ts)
				}
			}
		case string:
			if v != "" {
				tags = append(tags, v)
			}
		}
		if len(tags) > 0 {
			return strings.TrimSpace(inner) + " " + strings.Join(tags, " ")
		}
	}
	return strings.TrimSpace(inner)
}

// StripMarkdown flattens markdown links to "text url" and removes
// bold, italic, and underscore emphasis markers.
func StripMarkdown(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1 $2")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = underscorePair.ReplaceAllString(s, "$1")
	return s
}

// stripHTML drops tags and keeps text nodes, using the tokenizer so
// malformed fragments cannot break the output.
func stripHTML(s string) string {
	tok := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tok.Text())
		}
	}
}

// SmartTruncate cuts text down to limit runes, preferring to keep the
// trailing hashtags: the last three tags are re-appended after a cut
// at a word boundary, as long as at least 50 runes remain for body
// text. Output never exceeds limit.
func SmartTruncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	tags := hashtagPattern.FindAllString(text, -1)
	if len(tags) > truncateHashCap {
		tags = tags[len(tags)-truncateHashCap:]
	}
	suffix := strings.Join(tags, " ")

	bodyLimit := limit - len([]rune(suffix)) - 5
	if bodyLimit > 50 {
		body := string(runes[:bodyLimit])
		if i := strings.LastIndex(body, " "); i > 0 {
			body = body[:i]
		}
		return strings.TrimSpace(body + " " + suffix)
	}
	return string(runes[:limit])
}

// ExtractHashtags returns the #tags of a text in order of first
// appearance, deduplicated, never nil.
func ExtractHashtags(text string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Paragraphs matching these markers are agent/report framing, not
// content.
var cleanupMarkers = []string{
	"quality assessment", "assessment results", "recommendations:",
	"content strategy", "trending topics", "key recommendations",
	"score:", "tests passed:", "character limit:", "brand voice:",
	"hashtag usage:", "measurement:", "recommended actions:",
	"task", "agent:", "crew:", "final answer:", "output:",
	"linkedin post:", "twitter post:", "facebook post:",
}

// CleanAgentOutput strips report and assessment paragraphs that chatty
// models wrap around the actual content, drops fragments under 10
// characters, and removes consecutive duplicate lines.
func CleanAgentOutput(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var kept []string
	for _, part := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || len(trimmed) < 10 {
			continue
		}
		lower := strings.ToLower(trimmed)
		skip := false
		for _, marker := range cleanupMarkers {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, trimmed)
		}
	}

	joined := strings.Join(kept, "\n\n")

	var lines []string
	prev := ""
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != prev {
			lines = append(lines, line)
			prev = line
		}
	}
	return strings.Join(lines, "\n")
}
