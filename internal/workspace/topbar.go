package workspace

import (
	"strings"

	"github.com/illegalcall/codeshell/internal/models"
)

// TopBar is what the header shows for the current session.
type TopBar struct {
	SignedIn    bool   `json:"signed_in"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	DeployURL   string `json:"deploy_url,omitempty"`
}

// NewTopBar derives the header from the signed-in user and their profile, either
// of which may be nil.
func NewTopBar(user *models.User, profile *models.Profile, project, deployURL string) TopBar {
	bar := TopBar{ProjectName: project, DeployURL: deployURL}
	if user == nil {
		return bar
	}
	bar.SignedIn = true
	bar.AvatarURL = user.AvatarURL

	var displayName, username string
	if profile != nil {
		displayName = deref(profile.DisplayName)
		username = deref(profile.Username)
		if a := deref(profile.AvatarURL); a != "" {
			bar.AvatarURL = a
		}
	}

	switch {
	case displayName != "":
		bar.DisplayName = displayName
	case username != "":
		bar.DisplayName = username
	case user.DisplayName != "":
		bar.DisplayName = user.DisplayName
	default:
		bar.DisplayName, _, _ = strings.Cut(user.Email, "@")
	}
	return bar
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
