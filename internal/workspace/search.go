package workspace

import (
	"strings"

	"github.com/illegalcall/codeshell/internal/models"
)

// Match is one file search hit. Line is 0 for a match on the path itself.
type Match struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Search looks for query in the paths and contents of files, ignoring case.
// Results are ordered by path then line; limit <= 0 means no limit.
func Search(files models.FileMap, query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Match{}
	}

	matches := []Match{}
	add := func(m Match) bool {
		matches = append(matches, m)
		return limit > 0 && len(matches) >= limit
	}

	for _, path := range files.Paths() {
		if strings.Contains(strings.ToLower(path), q) {
			if add(Match{Path: path, Line: 0, Text: path}) {
				return matches
			}
		}
		for i, line := range strings.Split(files[path], "\n") {
			if strings.Contains(strings.ToLower(line), q) {
				if add(Match{Path: path, Line: i + 1, Text: strings.TrimSpace(line)}) {
					return matches
				}
			}
		}
	}
	return matches
}
