package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptRequirements(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Platform:    "twitter",
		ContentType: "post",
		Topic:       "cloud migration",
		BrandVoice:  "casual",
	})

	assert.True(t, strings.HasPrefix(prompt, "CRITICAL REQUIREMENTS:"))
	assert.Contains(t, prompt, "Maximum 280 characters total")
	assert.Contains(t, prompt, "Brand voice: casual")
	assert.Contains(t, prompt, "Include exactly 3 relevant hashtags")
	assert.Contains(t, prompt, "Style: concise")
	assert.Contains(t, prompt, "Topic: cloud migration")
}

func TestBuildPromptDefaultVoice(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Platform: "linkedin", ContentType: "post", Topic: "hiring"})
	assert.Contains(t, prompt, "Brand voice: professional")
}

func TestBuildPromptMediaAndContext(t *testing.T) {
	in := PromptInput{
		Platform:    "facebook",
		ContentType: "post",
		Topic:       "product launch",
	}

	plain := BuildPrompt(in)
	assert.NotContains(t, plain, "media suggestion")
	assert.NotContains(t, plain, "Additional context")

	in.IncludeMedia = true
	in.Context = "spring sale, 20% off"
	full := BuildPrompt(in)
	assert.Contains(t, full, "[Image: description]")
	assert.Contains(t, full, "Additional context: spring sale, 20% off")
}

func TestBuildPromptContentTypeLimits(t *testing.T) {
	poll := BuildPrompt(PromptInput{Platform: "twitter", ContentType: "poll", Topic: "remote work"})
	assert.Contains(t, poll, "Maximum 220 characters total")
	assert.Contains(t, poll, "Poll options:")

	article := BuildPrompt(PromptInput{Platform: "linkedin", ContentType: "article", Topic: "remote work"})
	assert.Contains(t, article, "Maximum 8000 characters total")
}

func TestBuildPromptThreadTemplate(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Platform: "x", ContentType: "thread", Topic: "observability"})
	assert.Contains(t, prompt, "Twitter thread about observability")
	assert.Contains(t, prompt, `Separate tweets with "---"`)
	assert.Contains(t, prompt, "under 280 characters")
}

func TestBuildPromptGenericFallback(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Platform: "instagram", ContentType: "reel", Topic: "recipes"})
	assert.Contains(t, prompt, "Create reel content for instagram about recipes.")
	assert.Contains(t, prompt, "under 1000 characters")
}
