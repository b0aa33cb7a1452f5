package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFallbackContentThread(t *testing.T) {
	out := FallbackContent("ai safety", "twitter", "thread", 280, false)

	parts := strings.Split(out, "\n---\n")
	assert.Len(t, parts, 3)
	assert.Contains(t, parts[0], "Tweet 1/3")
	assert.Contains(t, parts[0], "ai safety")
	assert.Contains(t, parts[2], "#content #discussion")

	// The x alias resolves before the thread template is chosen.
	assert.Equal(t, out, FallbackContent("ai safety", "x", "thread", 280, false))
}

func TestFallbackContentPoll(t *testing.T) {
	out := FallbackContent("remote work", "linkedin", "poll", 2800, false)

	assert.Contains(t, out, "What's your take on remote work?")
	assert.Contains(t, out, "- Very important")
	assert.Contains(t, out, "- Need more info")
	assert.Contains(t, out, "#poll #discussion")
}

func TestFallbackContentGeneric(t *testing.T) {
	out := FallbackContent("observability", "facebook", "post", 2000, false)
	assert.Equal(t, "Exploring observability - insights and thoughts #content #discussion", out)
}

func TestFallbackContentTruncatesLongTopics(t *testing.T) {
	topic := strings.TrimSpace(strings.Repeat("very long topic ", 30))
	out := FallbackContent(topic, "twitter", "post", 280, false)

	assert.LessOrEqual(t, utf8.RuneCountInString(out), 280)
	assert.True(t, strings.HasSuffix(out, "#content #discussion"), out)
}

func TestFallbackContentMediaMarker(t *testing.T) {
	with := FallbackContent("launch", "facebook", "post", 2000, true)
	assert.Contains(t, with, "[Image: relevant visual]")

	without := FallbackContent("launch", "facebook", "post", 2000, false)
	assert.NotContains(t, without, "[Image:")

	thread := FallbackContent("launch", "twitter", "thread", 280, true)
	assert.Contains(t, strings.Split(thread, "\n---\n")[0], "[Image: relevant visual]")
}
