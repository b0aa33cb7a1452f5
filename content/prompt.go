package content

import (
	"fmt"
	"strings"
)

// PromptInput carries everything the prompt templates interpolate.
type PromptInput struct {
	Platform     string
	ContentType  string
	Topic        string
	BrandVoice   string
	Context      string
	IncludeMedia bool
}

// BuildPrompt renders the generation prompt for a platform and content
// type. Every template opens with the same requirements block so the
// model always sees the hard limits first.
func BuildPrompt(in PromptInput) string {
	platform := NormalizePlatform(in.Platform)
	contentType := strings.ToLower(in.ContentType)
	spec := SpecFor(platform)
	limit := LimitFor(platform, contentType)

	voice := in.BrandVoice
	if voice == "" {
		voice = "professional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `CRITICAL REQUIREMENTS:
- Maximum %d characters total (including hashtags and emojis)
- Brand voice: %s
- Include exactly %d relevant hashtags
- Style: %s
- Topic: %s
`, limit, voice, spec.MaxHashtags, spec.Style, in.Topic)

	if in.IncludeMedia {
		b.WriteString("- Include media suggestion (image/video description in brackets like [Image: description])\n")
	}
	if in.Context != "" {
		fmt.Fprintf(&b, "- Additional context: %s\n", in.Context)
	}
	b.WriteString("\n")

	b.WriteString(bodyTemplate(platform, contentType, in.Topic, limit))
	return b.String()
}

func bodyTemplate(platform, contentType, topic string, limit int) string {
	switch platform {
	case "twitter":
		switch contentType {
		case "post":
			return fmt.Sprintf(`Create a single engaging tweet about %s.
Format: [Hook sentence] [Main message] [Call to action] [Hashtags]
Keep it under %d characters total.

Return ONLY the tweet text, nothing else.`, topic, limit)
		case "thread":
			return fmt.Sprintf(`Create a Twitter thread about %s with 3-5 tweets.
Each tweet must be under 280 characters.
Separate tweets with "---".

Thread structure:
Tweet 1: Hook/Introduction
Tweet 2-4: Key points/details
Final tweet: Conclusion/Call to action

Return the complete thread with separators.`, topic)
		case "poll":
			return fmt.Sprintf(`Create a Twitter poll about %s.
Format:
[Poll question - max 200 chars]

Poll options:
- Option 1
- Option 2
- Option 3
- Option 4

[Additional context if needed]
[Hashtags]

Total under %d characters.`, topic, limit)
		}
	case "linkedin":
		switch contentType {
		case "post":
			return fmt.Sprintf(`Create a professional LinkedIn post about %s.
Structure:
[Compelling opening line]

[Main content with insights/value]

[Call to action/question for engagement]

[Hashtags]

Keep under %d characters. Use professional tone.`, topic, limit)
		case "poll":
			return fmt.Sprintf(`Create a LinkedIn poll about %s.
Format:
[Context/introduction]

[Poll question]

- Option 1
- Option 2
- Option 3
- Option 4

[Why this matters/call for discussion]
[Hashtags]`, topic)
		}
	case "facebook":
		switch contentType {
		case "post":
			return fmt.Sprintf(`Create an engaging Facebook post about %s.
Structure:
[Attention-grabbing opening]

[Story/details that connect emotionally]

[Value/takeaway]

[Call to action for comments/shares]
[Hashtags]

Keep under %d characters.`, topic, limit)
		case "poll":
			return fmt.Sprintf(`Create a Facebook poll about %s.
Format:
[Engaging introduction]

[Poll question]

React with:
Like for Option 1
Love for Option 2
Haha for Option 3
Wow for Option 4

[Additional context]
[Hashtags]`, topic)
		}
	}

	return fmt.Sprintf(`Create %s content for %s about %s.
Keep it under %d characters total.
Return only the content, nothing else.`, contentType, platform, topic, limit)
}
