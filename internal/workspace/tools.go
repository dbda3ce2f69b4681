package workspace

import "strings"

// Tool is an entry in the command palette.
type Tool struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`
	Shortcut string   `json:"shortcut,omitempty"`
}

// DefaultTools is the palette shown in the editor.
var DefaultTools = []Tool{
	{ID: "run", Label: "Run project", Keywords: []string{"start", "execute", "preview"}, Shortcut: "Ctrl+Enter"},
	{ID: "deploy", Label: "Deploy to Vercel", Keywords: []string{"publish", "ship", "release"}},
	{ID: "format", Label: "Format document", Keywords: []string{"prettier", "indent"}, Shortcut: "Shift+Alt+F"},
	{ID: "search", Label: "Search files", Keywords: []string{"find", "grep"}, Shortcut: "Ctrl+Shift+F"},
	{ID: "new-file", Label: "New file", Keywords: []string{"create", "add"}},
	{ID: "toggle-console", Label: "Toggle console", Keywords: []string{"logs", "output", "terminal"}, Shortcut: "Ctrl+`"},
	{ID: "share", Label: "Share preview link", Keywords: []string{"copy", "url"}},
	{ID: "chat", Label: "Ask the assistant", Keywords: []string{"ai", "help", "conversation"}},
}

// ToolsPalette is the open/closed state and query of the command palette.
type ToolsPalette struct {
	Open  bool   `json:"open"`
	Query string `json:"query"`
}

func (p ToolsPalette) Opened() ToolsPalette {
	return ToolsPalette{Open: true}
}

func (p ToolsPalette) Closed() ToolsPalette {
	return ToolsPalette{}
}

func (p ToolsPalette) Queried(q string) ToolsPalette {
	p.Query = q
	return p
}

// Visible returns the tools matching the palette's query.
func (p ToolsPalette) Visible(tools []Tool) []Tool {
	return FilterTools(tools, p.Query)
}

// FilterTools keeps the tools whose label or keywords contain query, ignoring case.
func FilterTools(tools []Tool, query string) []Tool {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Tool{}
	for _, t := range tools {
		if q == "" || strings.Contains(strings.ToLower(t.Label), q) {
			out = append(out, t)
			continue
		}
		for _, k := range t.Keywords {
			if strings.Contains(strings.ToLower(k), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
