package content

import "strings"

// ImageSize is a recommended image dimension for a platform.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PlatformSpec captures a platform's hard limits and posting
// conventions. MaxLength counts characters including hashtags.
type PlatformSpec struct {
	MaxLength        int
	MaxHashtags      int
	Style            string
	ContentTypes     map[string]int // content type -> max length
	OptimalTimes     []string       // "HH:MM", local to the posting account
	ImageSizes       []ImageSize
	SupportedFormats []string
}

var platformSpecs = map[string]PlatformSpec{
	"twitter": {
		MaxLength:   280,
		MaxHashtags: 3,
		Style:       "concise",
		ContentTypes: map[string]int{
			"post":   280,
			"thread": 280, // per tweet
			"poll":   220, // poll options eat into the budget
		},
		OptimalTimes:     []string{"09:00", "15:00", "18:00"},
		ImageSizes:       []ImageSize{{1200, 675}},
		SupportedFormats: []string{"jpg", "png", "gif"},
	},
	"linkedin": {
		MaxLength:   3000,
		MaxHashtags: 5,
		Style:       "professional",
		ContentTypes: map[string]int{
			"post":    3000,
			"article": 8000,
			"poll":    2800,
		},
		OptimalTimes:     []string{"08:00", "12:00", "17:00"},
		ImageSizes:       []ImageSize{{1200, 627}},
		SupportedFormats: []string{"jpg", "png"},
	},
	"facebook": {
		MaxLength:   2000,
		MaxHashtags: 3,
		Style:       "engaging",
		ContentTypes: map[string]int{
			"post":  2000,
			"story": 500,
			"poll":  1800,
		},
		OptimalTimes:     []string{"13:00", "15:00", "19:00"},
		ImageSizes:       []ImageSize{{1200, 630}},
		SupportedFormats: []string{"jpg", "png", "gif", "mp4"},
	},
	"instagram": {
		MaxLength:   2200,
		MaxHashtags: 15,
		Style:       "visual-focused",
		ContentTypes: map[string]int{
			"post":  2200,
			"story": 200,
			"reel":  1000,
		},
		OptimalTimes:     []string{"11:00", "14:00", "17:00"},
		ImageSizes:       []ImageSize{{1080, 1080}, {1080, 1350}},
		SupportedFormats: []string{"jpg", "png"},
	},
}

// Platforms returns the supported platform names.
func Platforms() []string {
	return []string{"twitter", "linkedin", "facebook", "instagram"}
}

// NormalizePlatform lowercases the name and maps the "x" alias to
// twitter.
func NormalizePlatform(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "x" {
		return "twitter"
	}
	return p
}

// SpecFor returns the spec for a platform. Unknown platforms get the
// twitter spec, the tightest one, so nothing ever overshoots a real
// limit.
func SpecFor(platform string) PlatformSpec {
	if spec, ok := platformSpecs[NormalizePlatform(platform)]; ok {
		return spec
	}
	return platformSpecs["twitter"]
}

// LimitFor returns the character limit for a platform/content-type
// pair. Unknown content types fall back to the platform maximum.
func LimitFor(platform, contentType string) int {
	spec := SpecFor(platform)
	if limit, ok := spec.ContentTypes[strings.ToLower(contentType)]; ok {
		return limit
	}
	return spec.MaxLength
}

// IsSupportedPlatform reports whether the platform has a native spec.
func IsSupportedPlatform(platform string) bool {
	_, ok := platformSpecs[NormalizePlatform(platform)]
	return ok
}
