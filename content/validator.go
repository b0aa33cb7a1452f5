package content

import (
	"fmt"
	"strings"
)

// bannedWords fail the compliance check on every platform.
var bannedWords = []string{"spam", "clickbait", "guaranteed"}

// voiceKeywords is the heuristic per brand voice: content matching the
// voice usually carries at least one of these.
var voiceKeywords = map[string][]string{
	"professional":  {"expertise", "solution", "industry", "professional"},
	"casual":        {"hey", "awesome", "cool", "fun"},
	"friendly":      {"welcome", "happy", "excited", "great"},
	"authoritative": {"proven", "leader", "expert", "established"},
}

// ValidationResult is the outcome of the pre-publish checks.
type ValidationResult struct {
	Score           float64  `json:"score"`
	TestsPassed     int      `json:"tests_passed"`
	TotalTests      int      `json:"total_tests"`
	Recommendations []string `json:"recommendations"`
}

// Passed reports whether every check passed.
func (r ValidationResult) Passed() bool {
	return r.TestsPassed == r.TotalTests
}

// Validate runs the four quality checks on a piece of content: length,
// brand voice, hashtag count, and compliance. The score is the passed
// fraction in percent.
func Validate(text, platform, brandVoice string) ValidationResult {
	spec := SpecFor(platform)
	platform = NormalizePlatform(platform)

	checks := []struct {
		ok   bool
		hint string
	}{
		{len([]rune(text)) <= spec.MaxLength, fmt.Sprintf("Content exceeds %s character limit", platform)},
		{matchesBrandVoice(text, brandVoice), "Content doesn't match brand voice"},
		{len(hashtagPattern.FindAllString(text, -1)) <= spec.MaxHashtags, fmt.Sprintf("Too many hashtags for %s", platform)},
		{isCompliant(text), "Content may violate platform guidelines"},
	}

	result := ValidationResult{
		TotalTests:      len(checks),
		Recommendations: make([]string, 0),
	}
	for _, c := range checks {
		if c.ok {
			result.TestsPassed++
		} else {
			result.Recommendations = append(result.Recommendations, c.hint)
		}
	}
	result.Score = float64(result.TestsPassed) / float64(result.TotalTests) * 100
	return result
}

// matchesBrandVoice is permissive: voices without a keyword list pass.
func matchesBrandVoice(text, brandVoice string) bool {
	keywords, ok := voiceKeywords[strings.ToLower(strings.TrimSpace(brandVoice))]
	if !ok {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isCompliant(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range bannedWords {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}
