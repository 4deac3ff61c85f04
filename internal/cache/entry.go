package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is the stored envelope around a cached payload.
type Entry struct {
	Key      string          `json:"key"`
	StoredAt int64           `json:"stored_at"` // epoch milliseconds
	Payload  json.RawMessage `json:"payload"`
}

// StoredTime returns StoredAt as a time.Time.
func (e *Entry) StoredTime() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// IsStale returns true if the entry is at or older than the TTL.
func (e *Entry) IsStale(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.StoredAt >= ttl.Milliseconds()
}

// Age returns human-readable age string.
func (e *Entry) Age(now time.Time) string {
	duration := now.Sub(e.StoredTime())

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.StoredAt <= 0 || len(e.Payload) == 0 {
		return nil, fmt.Errorf("incomplete cache entry")
	}
	return &e, nil
}
