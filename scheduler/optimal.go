package scheduler

import (
	"time"

	"github.com/Arshmittal/Ai-social-media/content"
)

// NextOptimalTime returns the platform's next optimal posting slot
// strictly after the given time, rolling to the next day's first slot
// once today's are spent. All arithmetic is UTC.
func NextOptimalTime(platform string, after time.Time) time.Time {
	after = after.UTC()
	slots := content.SpecFor(platform).OptimalTimes

	for _, slot := range slots {
		if candidate, ok := slotOn(after, slot); ok && candidate.After(after) {
			return candidate
		}
	}

	if candidate, ok := slotOn(after.AddDate(0, 0, 1), slots[0]); ok {
		return candidate
	}
	return after.Add(24 * time.Hour)
}

// slotOn places an "HH:MM" slot on the given day.
func slotOn(day time.Time, hhmm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}
