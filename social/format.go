package social

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Arshmittal/Ai-social-media/content"
)

// linkedInPracticalLimit is well under the API's 3000-char maximum;
// longer posts get truncated by readers anyway.
const linkedInPracticalLimit = 1300

// FormatForPlatform applies the per-platform text rules before
// posting. Twitter threads pass through untouched: the separator lines
// must survive so the publisher can split and format each part.
func FormatForPlatform(platform, text, contentType string) string {
	switch content.NormalizePlatform(platform) {
	case "twitter":
		if contentType == "thread" {
			return text
		}
		return FormatTweet(text, 0, 0)
	case "linkedin":
		return formatLinkedIn(text)
	case "facebook":
		return truncateRunes(text, content.SpecFor("facebook").MaxLength)
	case "instagram":
		return truncateRunes(text, content.SpecFor("instagram").MaxLength)
	}
	return text
}

// FormatTweet applies twitter formatting: markdown strip, whitespace
// collapse, hashtag cap, and a (index/total) suffix for thread parts.
// Pass total 0 for a standalone tweet, which is truncated to the
// platform limit. Thread parts (total >= 1) keep their full text so
// overflow chains into extra tweets instead of being dropped.
func FormatTweet(text string, index, total int) string {
	spec := content.SpecFor("twitter")

	text = content.StripMarkdown(text)
	text = strings.Join(strings.Fields(text), " ")
	text = capHashtags(text, spec.MaxHashtags)

	if total > 1 {
		return text + fmt.Sprintf(" (%d/%d)", index, total)
	}
	if total == 1 {
		return text
	}
	return truncateRunes(text, spec.MaxLength)
}

// capHashtags keeps the first max hashtags and drops the rest. Repeats
// of a kept tag survive, matching the set-membership filter this
// mirrors.
func capHashtags(text string, max int) string {
	words := strings.Fields(text)
	var tags []string
	for _, w := range words {
		if strings.HasPrefix(w, "#") {
			tags = append(tags, w)
		}
	}
	if len(tags) <= max {
		return text
	}

	kept := make(map[string]struct{}, max)
	for _, tag := range tags[:max] {
		kept[tag] = struct{}{}
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.HasPrefix(w, "#") {
			if _, ok := kept[w]; !ok {
				continue
			}
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// splitTweetText chunks text into tweet-sized pieces on word
// boundaries. Words longer than a whole tweet are hard-cut.
func splitTweetText(text string, max int) []string {
	var chunks []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if utf8.RuneCountInString(candidate) <= max {
			current = candidate
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
		}
		runes := []rune(word)
		for len(runes) > max {
			chunks = append(chunks, string(runes[:max]))
			runes = runes[max:]
		}
		current = string(runes)
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func formatLinkedIn(text string) string {
	text = content.StripMarkdown(text)
	if utf8.RuneCountInString(text) > linkedInPracticalLimit {
		runes := []rune(text)
		text = string(runes[:linkedInPracticalLimit-3]) + "..."
	}
	return text
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
