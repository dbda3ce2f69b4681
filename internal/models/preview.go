package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// IndexFile is the entry point every deployment must contain.
const IndexFile = "index.html"

// FileMap maps a project-relative path to the file content.
type FileMap map[string]string

// Paths returns the file paths in lexical order.
func (f FileMap) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy that can be modified independently.
func (f FileMap) Clone() FileMap {
	out := make(FileMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Value stores the map as jsonb.
func (f FileMap) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan reads a jsonb column.
func (f *FileMap) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = FileMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for FileMap: %T", src)
	}
	out := FileMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode files: %w", err)
	}
	*f = out
	return nil
}

// AppPreview is a stored project preview keyed by its unique name.
type AppPreview struct {
	Name        string    `json:"name" db:"name"`
	HTMLContent string    `json:"html_content" db:"html_content"`
	Files       FileMap   `json:"files" db:"files"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SavePreviewRequest is the body of the save endpoint.
type SavePreviewRequest struct {
	HTMLContent string  `json:"html_content"`
	Files       FileMap `json:"files"`
}

// Deployment records the last successful deploy of a preview.
type Deployment struct {
	AppName    string    `json:"app_name"`
	URL        string    `json:"url"`
	DeployedAt time.Time `json:"deployed_at"`
	Snapshot   string    `json:"snapshot,omitempty"`
}
