package actions

import "time"

// Level is the severity of a Toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// DefaultToastTTL is how long a notification stays on screen.
const DefaultToastTTL = 4 * time.Second

// Toast is a transient notification.
type Toast struct {
	Level   Level
	Text    string
	Expires time.Time
}

// NewToast builds a toast that expires ttl after now.
func NewToast(level Level, text string, now time.Time, ttl time.Duration) Toast {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return Toast{Level: level, Text: text, Expires: now.Add(ttl)}
}

// Active reports whether the toast should still be shown at now.
func (t Toast) Active(now time.Time) bool {
	return t.Text != "" && now.Before(t.Expires)
}
