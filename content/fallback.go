package content

import "fmt"

// FallbackContent produces deterministic content when generation
// fails. It is intentionally bland: the point is that scheduled posts
// and API responses keep working while the LLM is down.
func FallbackContent(topic, platform, contentType string, limit int, includeMedia bool) string {
	media := ""
	if includeMedia {
		media = " [Image: relevant visual]"
	}

	platform = NormalizePlatform(platform)

	switch {
	case platform == "twitter" && contentType == "thread":
		return fmt.Sprintf(`Tweet 1/3: Exploring %s - why it matters today%s
---
Tweet 2/3: Key insights about %s that everyone should know
---
Tweet 3/3: What's your experience with %s? Share your thoughts! #content #discussion`, topic, media, topic, topic)

	case contentType == "poll":
		return fmt.Sprintf(`What's your take on %s?%s

- Very important
- Somewhat important
- Not important
- Need more info

Share your thoughts below! #poll #discussion`, topic, media)

	default:
		base := fmt.Sprintf("Exploring %s - insights and thoughts%s #content #discussion", topic, media)
		return SmartTruncate(base, limit)
	}
}
