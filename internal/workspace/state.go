package workspace

import (
	"fmt"
	"time"

	"github.com/illegalcall/codeshell/internal/apperr"
)

type EventType string

const (
	EventTabOpen       EventType = "tab.open"
	EventTabClose      EventType = "tab.close"
	EventTabActivate   EventType = "tab.activate"
	EventConsoleLog    EventType = "console.log"
	EventConsoleClear  EventType = "console.clear"
	EventConsoleToggle EventType = "console.toggle"
	EventToolsOpen     EventType = "tools.open"
	EventToolsClose    EventType = "tools.close"
	EventToolsQuery    EventType = "tools.query"
	EventAuthOpen      EventType = "auth.open"
	EventAuthClose     EventType = "auth.close"
	EventAuthSwitch    EventType = "auth.switch"
)

// Event is a user action on one of the shell components. Only the fields that
// belong to its type are read.
type Event struct {
	Type    EventType `json:"type"`
	Path    string    `json:"path,omitempty"`
	Level   Level     `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
	Query   string    `json:"query,omitempty"`
	Mode    AuthMode  `json:"mode,omitempty"`
	At      time.Time `json:"at,omitempty"`
}

// State is the whole shell of one user's workspace.
type State struct {
	Tabs    Tabs         `json:"tabs"`
	Console Console      `json:"console"`
	Tools   ToolsPalette `json:"tools"`
	Auth    AuthModal    `json:"auth"`
}

// NewState returns the shell as it looks on first load.
func NewState() State {
	return State{Auth: AuthModal{Mode: ModeSignIn}}
}

// Apply returns the state after ev. It never mutates s.
func (s State) Apply(ev Event) (State, error) {
	switch ev.Type {
	case EventTabOpen:
		s.Tabs = s.Tabs.Opened(ev.Path)
	case EventTabClose:
		s.Tabs = s.Tabs.Closed(ev.Path)
	case EventTabActivate:
		s.Tabs = s.Tabs.Activated(ev.Path)
	case EventConsoleLog:
		s.Console = s.Console.Logged(Entry{Level: ev.Level, Message: ev.Message, At: ev.At})
	case EventConsoleClear:
		s.Console = s.Console.Cleared()
	case EventConsoleToggle:
		s.Console = s.Console.Toggled()
	case EventToolsOpen:
		s.Tools = s.Tools.Opened()
	case EventToolsClose:
		s.Tools = s.Tools.Closed()
	case EventToolsQuery:
		s.Tools = s.Tools.Queried(ev.Query)
	case EventAuthOpen:
		s.Auth = s.Auth.Opened(ev.Mode)
	case EventAuthClose:
		s.Auth = s.Auth.Closed()
	case EventAuthSwitch:
		s.Auth = s.Auth.Switched()
	default:
		return s, apperr.Validation(fmt.Sprintf("Unknown event type %q", ev.Type))
	}
	return s, nil
}
