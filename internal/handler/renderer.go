package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering.
//
// Templates are organized as:
//   - layouts/public.html - the base layout
//   - components/*.html - page sections (shared by every page)
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/public/*.html - pages (use the public layout)
type Renderer struct {
	templates map[string]*template.Template
	fsys      fs.FS
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS holds the template tree. In development pass os.DirFS so edits show
	// up on the next request.
	FS     fs.FS
	Logger *slog.Logger
	IsDev  bool
}

// TemplateRenderer is what handlers need from the Renderer.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
	RenderPartial(w http.ResponseWriter, name string, data interface{})
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("renderer: template filesystem is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		templates: make(map[string]*template.Template),
		fsys:      cfg.FS,
		logger:    logger,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	templates := make(map[string]*template.Template)

	// Components may be nested in subdirectories
	var componentFiles []string
	err := fs.WalkDir(r.fsys, "components", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "components" && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			componentFiles = append(componentFiles, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk components dir: %w", err)
	}

	partialFiles, err := fs.Glob(r.fsys, "partials/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	// Parse each partial as a standalone template. Partials may use
	// components, so those are parsed in too.
	for _, partial := range partialFiles {
		files := append([]string{partial}, componentFiles...)
		partialTmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.fsys, files...)
		if err != nil {
			return fmt.Errorf("failed to parse partial %s: %w", partial, err)
		}
		templates["partial/"+baseName(partial)] = partialTmpl
	}

	publicBaseTmpl, err := template.New("public").Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/public.html")
	if err != nil {
		return fmt.Errorf("failed to parse public layout: %w", err)
	}

	if len(componentFiles) > 0 {
		publicBaseTmpl, err = publicBaseTmpl.ParseFS(r.fsys, componentFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse components into public layout: %w", err)
		}
	}

	// Pages embed partials with {{template "contact_form" .}}
	if len(partialFiles) > 0 {
		publicBaseTmpl, err = publicBaseTmpl.ParseFS(r.fsys, partialFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse partials into public layout: %w", err)
		}
	}

	publicPages, err := fs.Glob(r.fsys, "pages/public/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob public pages: %w", err)
	}

	for _, page := range publicPages {
		pageTmpl, err := publicBaseTmpl.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone public template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse public page %s: %w", page, err)
		}

		// Store as "public/home", etc.
		templates["public/"+baseName(page)] = pageTmpl
	}

	r.templates = templates
	r.logger.Info("templates loaded", "count", len(templates))
	return nil
}

// baseName returns the file name without directory and extension.
func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// Reload reloads all templates. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	// In dev mode, reload templates on each request
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, r.getBaseTemplateName(name), data)
}

// RenderHTML renders a template and returns the HTML as a string.
func (r *Renderer) RenderHTML(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTTP renders a template directly to an http.ResponseWriter.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.RenderHTTPStatus(w, http.StatusOK, name, data)
}

// RenderHTTPStatus renders a template with the given status code.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	// Render to buffer first to catch errors before writing headers
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderPartial renders a partial template (for htmx responses).
// The partial file should contain {{define "name"}}...{{end}} where name matches the file name.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, "partial/"+name, data); err != nil {
		r.logger.Error("partial execution failed", "name", name, "error", err)
		http.Error(w, "Partial execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// getBaseTemplateName determines which base template to execute.
func (r *Renderer) getBaseTemplateName(name string) string {
	if strings.HasPrefix(name, "partial/") {
		// Partials execute the template named after their file
		return path.Base(name)
	}
	return "public"
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
