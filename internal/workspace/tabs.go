package workspace

// Tabs is the editor's tab bar: the open files in order and the active one.
type Tabs struct {
	Open   []string `json:"open"`
	Active string   `json:"active"`
}

// Opened returns tabs with path open and active. Opening an open file only
// activates it.
func (t Tabs) Opened(path string) Tabs {
	if path == "" {
		return t
	}
	if t.index(path) < 0 {
		t.Open = append(append([]string{}, t.Open...), path)
	}
	t.Active = path
	return t
}

// Closed returns tabs without path. When the active tab closes, its right-hand
// neighbour becomes active, or the left-hand one when it was the last.
func (t Tabs) Closed(path string) Tabs {
	i := t.index(path)
	if i < 0 {
		return t
	}
	open := make([]string, 0, len(t.Open)-1)
	open = append(open, t.Open[:i]...)
	open = append(open, t.Open[i+1:]...)

	active := t.Active
	if active == path {
		switch {
		case len(open) == 0:
			active = ""
		case i < len(open):
			active = open[i]
		default:
			active = open[len(open)-1]
		}
	}
	return Tabs{Open: open, Active: active}
}

// Activated returns tabs with path active if it is open.
func (t Tabs) Activated(path string) Tabs {
	if t.index(path) >= 0 {
		t.Active = path
	}
	return t
}

func (t Tabs) index(path string) int {
	for i, p := range t.Open {
		if p == path {
			return i
		}
	}
	return -1
}
