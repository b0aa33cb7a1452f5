package content

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestProperty_PostProcessNeverExceedsLimit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("output length stays within the limit", prop.ForAll(
		func(text string, limit int) bool {
			out := PostProcess(text, limit)
			if got := utf8.RuneCountInString(out); got > limit {
				t.Logf("limit %d exceeded with %d runes for input %q", limit, got, text)
				return false
			}
			return true
		},
		gen.AnyString(),
		gen.IntRange(1, 400), // limit
	))

	properties.TestingRun(t)
}

func TestProperty_PostProcessNonBlankNeverEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("non-blank input never produces an empty post", prop.ForAll(
		func(text string, limit int) bool {
			out := PostProcess(text, limit)
			if out == "" {
				t.Logf("empty output for input %q at limit %d", text, limit)
				return false
			}
			return true
		},
		gen.AnyString().SuchThat(func(s string) bool { return strings.TrimSpace(s) != "" }),
		gen.IntRange(1, 400), // limit
	))

	properties.TestingRun(t)
}

func TestProperty_PostProcessKeepsFittingPlainText(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("plain text within the limit passes through unchanged", prop.ForAll(
		func(text string) bool {
			out := PostProcess(text, 500)
			if out != text {
				t.Logf("input %q came out as %q", text, out)
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool {
			return s != "" && utf8.RuneCountInString(s) <= 500
		}),
	))

	properties.TestingRun(t)
}

func TestProperty_SmartTruncateKeepsTrailingHashtags(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("over-limit text keeps the last three hashtags and cuts on a word boundary", prop.ForAll(
		func(words, tagCount, limit int) bool {
			body := strings.TrimSpace(strings.Repeat("word ", words))
			tags := make([]string, tagCount)
			for i := range tags {
				tags[i] = fmt.Sprintf("#tag%d", i)
			}
			text := body + " " + strings.Join(tags, " ")

			out := SmartTruncate(text, limit)
			if got := utf8.RuneCountInString(out); got > limit {
				t.Logf("limit %d exceeded with %d runes", limit, got)
				return false
			}

			keep := tags
			if len(keep) > truncateHashCap {
				keep = keep[len(keep)-truncateHashCap:]
			}
			suffix := strings.Join(keep, " ")
			if !strings.HasSuffix(out, suffix) {
				t.Logf("expected suffix %q in %q", suffix, out)
				return false
			}

			// Everything before the tags must be whole words.
			head := strings.TrimSpace(strings.TrimSuffix(out, suffix))
			for _, field := range strings.Fields(head) {
				if field != "word" {
					t.Logf("partial word %q in %q", field, out)
					return false
				}
			}
			return true
		},
		gen.IntRange(60, 120), // words, five runes each, always over the limit
		gen.IntRange(1, 6),    // trailing hashtags
		gen.IntRange(120, 260),
	))

	properties.TestingRun(t)
}

func TestProperty_ExtractHashtagsDeduplicates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("extracted hashtags are unique and tagged", prop.ForAll(
		func(text string) bool {
			tags := ExtractHashtags(text)
			seen := make(map[string]struct{}, len(tags))
			for _, tag := range tags {
				if !strings.HasPrefix(tag, "#") {
					t.Logf("tag %q lost its prefix", tag)
					return false
				}
				if _, dup := seen[tag]; dup {
					t.Logf("duplicate tag %q from %q", tag, text)
					return false
				}
				seen[tag] = struct{}{}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestPostProcessUnwrapsJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "content with hashtag list",
			in:   `{"content": "Launch day is here", "hashtags": ["#golang", "#devops"]}`,
			want: "Launch day is here #golang #devops",
		},
		{
			name: "content with hashtag string",
			in:   `{"content": "Launch day is here", "hashtags": "#golang"}`,
			want: "Launch day is here #golang",
		},
		{
			name: "content only",
			in:   `{"content": "Launch day is here"}`,
			want: "Launch day is here",
		},
		{
			name: "no content key passes through",
			in:   `{"title": "x"}`,
			want: `{"title": "x"}`,
		},
		{
			name: "invalid json passes through",
			in:   `{not json}`,
			want: `{not json}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PostProcess(tc.in, 280))
		})
	}
}

func TestPostProcessStripsMarkdown(t *testing.T) {
	in := "**Big news** about *Go* and _releases_: [changelog](https://go.dev/doc)"
	want := "Big news about Go and releases: changelog https://go.dev/doc"
	assert.Equal(t, want, PostProcess(in, 280))
}

func TestPostProcessStripsHTML(t *testing.T) {
	in := "<p>Fresh release notes for <b>v2.0</b> are live</p>"
	assert.Equal(t, "Fresh release notes for v2.0 are live", PostProcess(in, 280))
}

func TestPostProcessDegenerateInput(t *testing.T) {
	assert.Equal(t, "", PostProcess("", 280))
	assert.Equal(t, "", PostProcess("   \n\t  ", 280))
	// Stripping eats the whole string, so the raw input comes back.
	assert.Equal(t, "**", PostProcess("**", 280))
}

func TestSmartTruncate(t *testing.T) {
	t.Run("zero or negative limit means no limit", func(t *testing.T) {
		long := strings.Repeat("a", 500)
		assert.Equal(t, long, SmartTruncate(long, 0))
		assert.Equal(t, long, SmartTruncate(long, -1))
	})

	t.Run("fitting text is unchanged", func(t *testing.T) {
		assert.Equal(t, "short post #go", SmartTruncate("short post #go", 280))
	})

	t.Run("keeps the last three hashtags", func(t *testing.T) {
		body := strings.TrimSpace(strings.Repeat("alpha ", 30))
		out := SmartTruncate(body+" #one #two #three #four", 120)

		assert.LessOrEqual(t, utf8.RuneCountInString(out), 120)
		assert.True(t, strings.HasSuffix(out, "#two #three #four"), out)
		assert.NotContains(t, out, "#one")
		for _, field := range strings.Fields(strings.TrimSuffix(out, " #two #three #four")) {
			assert.Equal(t, "alpha", field)
		}
	})

	t.Run("tight limit cuts plainly", func(t *testing.T) {
		out := SmartTruncate("Update on the launch schedule for next quarter #news", 20)
		assert.Equal(t, "Update on the launch", out)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		out := SmartTruncate(strings.Repeat("\U0001F680", 40), 10)
		assert.Equal(t, strings.Repeat("\U0001F680", 10), out)
	})
}

func TestCleanAgentOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "report framing is dropped",
			in:   "Quality Assessment: looks solid\n\nRemote work changes how teams collaborate every day.\n\nScore: 92/100",
			want: "Remote work changes how teams collaborate every day.",
		},
		{
			name: "short fragments are dropped",
			in:   "ok\n\nThe full announcement paragraph stays intact here.",
			want: "The full announcement paragraph stays intact here.",
		},
		{
			name: "consecutive duplicate lines collapse",
			in:   "Ship day is finally here\nShip day is finally here\nJoin the livestream at noon",
			want: "Ship day is finally here\nJoin the livestream at noon",
		},
		{
			name: "duplicates across a dropped blank line collapse too",
			in:   "Ship day is finally here\n\nShip day is finally here",
			want: "Ship day is finally here",
		},
		{
			name: "marker matches anywhere in a paragraph",
			in:   "Multitasking tips help developers stay focused.",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "all framing yields nothing",
			in:   "Final Answer: done\n\nOutput: the post",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanAgentOutput(tc.in))
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("Go #golang rocks #devops and #golang again")
	assert.Equal(t, []string{"#golang", "#devops"}, tags)

	empty := ExtractHashtags("no tags here")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
