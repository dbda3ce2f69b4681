package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/metrics"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
)

type State string

const (
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateDeploying State = "deploying"
)

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Toast is a transient notification for the user.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Notifier receives the toasts a page raises.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Source is where stored previews are read from.
type Source interface {
	GetPreview(ctx context.Context, name string) (*models.AppPreview, error)
}

// View is a snapshot of the page.
type View struct {
	Name         string            `json:"name"`
	State        State             `json:"state"`
	Loading      bool              `json:"loading"`
	PreviewCode  *string           `json:"preview_code"`
	ProjectFiles models.FileMap    `json:"project_files"`
	DeployedURL  string            `json:"deployed_url,omitempty"`
	Console      []workspace.Entry `json:"console"`
	Toasts       []Toast           `json:"toasts,omitempty"`
}

// Page is the preview/deploy screen for one app. It starts in loading and moves
// between ready and deploying; network calls run without holding the lock.
type Page struct {
	name     string
	source   Source
	deployer Deployer
	notifier Notifier
	now      func() time.Time

	mu           sync.Mutex
	state        State
	previewCode  *string
	projectFiles models.FileMap
	deployedURL  string
	console      workspace.Console
	toasts       []Toast
}

func NewPage(name string, source Source, deployer Deployer, notifier Notifier) *Page {
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	return &Page{
		name:         name,
		source:       source,
		deployer:     deployer,
		notifier:     notifier,
		now:          time.Now,
		state:        StateLoading,
		projectFiles: models.FileMap{},
	}
}

// Load fetches the stored preview. A missing record leaves the page empty and
// ready without an error.
func (p *Page) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateDeploying {
		p.mu.Unlock()
		return apperr.Conflict("A deployment is in progress")
	}
	p.state = StateLoading
	p.mu.Unlock()

	preview, err := p.source.GetPreview(ctx, p.name)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateReady

	if errors.Is(err, store.ErrNotFound) {
		slog.Info("No stored preview", "app", p.name)
		return nil
	}
	if err != nil {
		slog.Error("Failed to load preview", "app", p.name, "error", err)
		p.log(workspace.LevelError, "Failed to load preview")
		return fmt.Errorf("failed to load preview %q: %w", p.name, err)
	}

	code := preview.HTMLContent
	p.previewCode = &code
	p.projectFiles = preview.Files.Clone()
	p.log(workspace.LevelInfo, fmt.Sprintf("Loaded %d files", len(p.projectFiles)))
	return nil
}

// Refresh reloads the preview, as the refresh button does.
func (p *Page) Refresh(ctx context.Context) error {
	return p.Load(ctx)
}

// Deploy makes a single deploy attempt and returns the deployed URL. An empty file
// set is rejected before the deployer is called. Whatever the outcome, the page is
// ready again afterwards.
func (p *Page) Deploy(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != StateReady {
		state := p.state
		p.mu.Unlock()
		return "", apperr.Conflict(fmt.Sprintf("Cannot deploy while %s", state))
	}
	files := BuildDeployFiles(p.projectFiles, p.previewCode)
	if len(files) == 0 {
		p.mu.Unlock()
		return "", apperr.Validation("Nothing to deploy")
	}
	p.state = StateDeploying
	p.log(workspace.LevelInfo, fmt.Sprintf("Deploying %d files", len(files)))
	p.mu.Unlock()

	res, err := p.deployer.Deploy(ctx, DeployRequest{AppName: p.name, Files: files})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateReady

	if err != nil {
		metrics.Deploys.WithLabelValues("failure").Inc()
		slog.Error("Deployment failed", "app", p.name, "error", err)
		p.log(workspace.LevelError, "Deployment failed: "+err.Error())
		p.raise(Toast{Title: "Deployment failed", Description: err.Error(), Variant: VariantDestructive})
		return "", apperr.Server("Deployment failed", err)
	}

	metrics.Deploys.WithLabelValues("success").Inc()
	p.deployedURL = res.URL
	slog.Info("Deployment successful", "app", p.name, "url", res.URL)
	p.log(workspace.LevelSuccess, "Deployed to "+res.URL)
	p.raise(Toast{Title: "Deployment successful", Description: "Your app is live at " + res.URL, Variant: VariantDefault})
	return res.URL, nil
}

// DeployFiles returns what a deploy would send right now.
func (p *Page) DeployFiles() models.FileMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return BuildDeployFiles(p.projectFiles, p.previewCode)
}

// Files returns the project files.
func (p *Page) Files() models.FileMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projectFiles.Clone()
}

func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	var code *string
	if p.previewCode != nil {
		c := *p.previewCode
		code = &c
	}
	return View{
		Name:         p.name,
		State:        p.state,
		Loading:      p.state == StateLoading,
		PreviewCode:  code,
		ProjectFiles: p.projectFiles.Clone(),
		DeployedURL:  p.deployedURL,
		Console:      append([]workspace.Entry{}, p.console.Entries...),
		Toasts:       append([]Toast(nil), p.toasts...),
	}
}

// log and raise must be called with mu held.
func (p *Page) log(level workspace.Level, msg string) {
	p.console = p.console.Logged(workspace.Entry{Level: level, Message: msg, At: p.now()})
}

func (p *Page) raise(t Toast) {
	p.toasts = append(p.toasts, t)
	p.notifier.Notify(t)
}
