// Package server is the web UI: today's insights, responding, search, and
// generated drafts. Thin glue over the library packages.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/daily"
	"github.com/akvasu/braingym/internal/database"
	"github.com/akvasu/braingym/internal/generate"
	"github.com/akvasu/braingym/internal/llm"
	"github.com/akvasu/braingym/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the practice UI.
type Server struct {
	cfg      *config.Config
	db       *database.DB
	engine   *search.Engine
	selector *daily.Selector
	provider llm.Provider
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server. The provider may be nil; generation routes then
// report the problem instead of failing at startup.
func New(cfg *config.Config, db *database.DB, provider llm.Provider) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the
	// clone. This gives each page its own {{define "content"}} and
	// {{define "title"}}.
	pageNames := []string{"daily.html", "search.html", "generations.html", "generation.html", "insights.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		cfg:      cfg,
		db:       db,
		engine:   search.New(cfg.Search),
		selector: daily.New(db, cfg.Daily),
		provider: provider,
		pages:    pages,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleDaily)
	s.mux.HandleFunc("/respond/", s.handleRespond)
	s.mux.HandleFunc("/skip/", s.handleSkip)
	s.mux.HandleFunc("/archive/", s.handleArchive)
	s.mux.HandleFunc("/search", s.handleSearch)
	s.mux.HandleFunc("/generate", s.handleGenerate)
	s.mux.HandleFunc("/generations", s.handleGenerations)
	s.mux.HandleFunc("/generations/", s.handleGeneration)
	s.mux.HandleFunc("/insights", s.handleInsights)
}

// handleDaily shows today's practice set. The first visit of the day runs
// the selector; reloads reuse the logged session so refreshing the page
// does not burn through the pool.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	insights, err := s.todaysInsights()
	if err != nil {
		log.Printf("Error selecting daily insights: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats, _ := s.db.GetStats()
	s.render(w, "daily.html", map[string]any{
		"Insights": insights,
		"Stats":    stats,
	})
}

func (s *Server) todaysInsights() ([]database.Insight, error) {
	session, err := s.db.GetSession(database.GetToday())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return s.selector.Select()
	}

	var insights []database.Insight
	for _, id := range session.InsightIDs {
		in, err := s.db.GetInsight(id)
		if err != nil {
			return nil, err
		}
		// Keep only what is still actionable.
		if in != nil && in.Status == database.StatusPending {
			insights = append(insights, *in)
		}
	}
	return insights, nil
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r, "/respond/")
	if !ok {
		return
	}

	text := strings.TrimSpace(r.FormValue("response_text"))
	if text == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if _, err := s.db.AddResponse(id, text); err != nil {
		log.Printf("Error responding to insight %d: %v", id, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r, "/skip/")
	if !ok {
		return
	}
	if err := s.db.SkipInsight(id); err != nil {
		log.Printf("Error skipping insight %d: %v", id, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r, "/archive/")
	if !ok {
		return
	}
	if err := s.db.ArchiveInsight(id); err != nil {
		log.Printf("Error archiving insight %d: %v", id, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// postID parses "/{prefix}{id}" on a POST request, redirecting home on
// anything malformed.
func (s *Server) postID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, prefix), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return 0, false
	}
	return id, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.FormValue("q"))

	var matches []search.Match
	if topic != "" {
		candidates, err := s.db.GetSearchCandidates()
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		matches = s.engine.Rank(topic, candidates)
	}

	s.render(w, "search.html", map[string]any{
		"Topic":   topic,
		"Matches": matches,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/search", http.StatusFound)
		return
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	if topic == "" {
		http.Redirect(w, r, "/search", http.StatusFound)
		return
	}

	candidates, err := s.db.GetSearchCandidates()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	matches := s.engine.Rank(topic, candidates)

	orch := generate.New(s.db, s.provider, s.cfg.Generation)
	gen, err := orch.Generate(r.Context(), topic, matches)
	if err != nil {
		log.Printf("Error generating drafts for %q: %v", topic, err)
		s.render(w, "generations.html", map[string]any{
			"Error": err.Error(),
		})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/generations/%d", gen.ID), http.StatusFound)
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	generations, err := s.db.GetAllGenerations()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, "generations.html", map[string]any{
		"Generations": generations,
	})
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/generations/"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/generations", http.StatusFound)
		return
	}

	gen, err := s.db.GetGeneration(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if gen == nil {
		http.NotFound(w, r)
		return
	}

	var sources []database.Insight
	for _, sid := range gen.SourceIDs {
		in, err := s.db.GetInsight(sid)
		if err == nil && in != nil {
			sources = append(sources, *in)
		}
	}

	s.render(w, "generation.html", map[string]any{
		"Generation": gen,
		"Sources":    sources,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.db.GetRecentInsights(50)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, "insights.html", map[string]any{
		"Insights": insights,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, db *database.DB, provider llm.Provider, port int) error {
	srv, err := New(cfg, db, provider)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
