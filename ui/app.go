package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/internal"
	"fastfisher/internal/referee"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App serves HTML reports for benchmark, comparison and documented-table runs
type App struct {
	router  *chi.Mux
	engine  *fisher.Engine
	referee *referee.Referee
	config  Config
	logger  *internal.Logger
	layout  *template.Template
}

// Config holds UI application configuration
type Config struct {
	Port            string
	BenchIterations int
	CompareSamples  int
	Seed            int64
}

// maxCompareSamples caps the samples query parameter.
const maxCompareSamples = 200000

// NewApp creates the UI application. A nil referee disables the compare and
// exceptions pages.
func NewApp(engine *fisher.Engine, ref *referee.Referee, config Config, logger *internal.Logger) (*App, error) {
	if engine == nil {
		engine = fisher.Default
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.BenchIterations <= 0 {
		config.BenchIterations = 200
	}
	if config.CompareSamples <= 0 {
		config.CompareSamples = 1000
	}

	layout, err := template.ParseFS(embeddedFiles, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:  chi.NewRouter(),
		engine:  engine,
		referee: ref,
		config:  config,
		logger:  logger,
		layout:  layout,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/bench", a.handleBench)
	a.router.Get("/compare", a.handleCompare)
	a.router.Get("/exceptions", a.handleExceptions)
}

// Handler returns the router.
func (a *App) Handler() http.Handler {
	return a.router
}

type page struct {
	Title string
	Body  template.HTML
}

func (a *App) render(w http.ResponseWriter, title string, body []byte) {
	var buf bytes.Buffer
	if err := a.layout.ExecuteTemplate(&buf, "layout.html", page{Title: title, Body: template.HTML(body)}); err != nil {
		a.logger.Error("template render failed", "page", title, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func markdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(p.Parse([]byte(md)), renderer)
}
