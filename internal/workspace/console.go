package workspace

import "time"

// MaxConsoleEntries bounds the console buffer.
const MaxConsoleEntries = 500

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

func (l Level) valid() bool {
	switch l {
	case LevelInfo, LevelWarn, LevelError, LevelSuccess:
		return true
	}
	return false
}

type Entry struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Console is the log panel under the editor.
type Console struct {
	Entries  []Entry `json:"entries"`
	Expanded bool    `json:"expanded"`
}

// Logged returns the console with e appended. Unknown levels are logged as info.
// The oldest entries are dropped past MaxConsoleEntries.
func (c Console) Logged(e Entry) Console {
	if !e.Level.valid() {
		e.Level = LevelInfo
	}
	entries := make([]Entry, 0, len(c.Entries)+1)
	entries = append(entries, c.Entries...)
	entries = append(entries, e)
	if over := len(entries) - MaxConsoleEntries; over > 0 {
		entries = entries[over:]
	}
	c.Entries = entries
	return c
}

func (c Console) Cleared() Console {
	c.Entries = nil
	return c
}

func (c Console) Toggled() Console {
	c.Expanded = !c.Expanded
	return c
}

// Errors counts the error entries, shown as a badge on the collapsed panel.
func (c Console) Errors() int {
	n := 0
	for _, e := range c.Entries {
		if e.Level == LevelError {
			n++
		}
	}
	return n
}
