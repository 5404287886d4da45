// Package server is the local web UI: the article feed, per-article
// reading view, recommendations, reading insights, and the daily digest.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/history"
	"github.com/kindlingnews/kindling/internal/insights"
	"github.com/kindlingnews/kindling/internal/news"
	"github.com/kindlingnews/kindling/internal/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// wordsPerMinute is the reading speed behind the minute estimates.
const wordsPerMinute = 200

// Server is the HTTP server for the reader UI.
type Server struct {
	db       *database.DB
	tracker  *history.Tracker
	recLimit int
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server. recLimit bounds the recommendation list.
func New(db *database.DB, tracker *history.Tracker, recLimit int) (*Server, error) {
	if recLimit <= 0 {
		recLimit = 10
	}

	funcMap := template.FuncMap{
		"markdown":    renderMarkdown,
		"readingTime": ReadingTime,
		"timeAgo":     timeAgo,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the
	// clone so each page gets its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "article.html", "recommendations.html", "insights.html", "digest.html"}
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

	s := &Server{db: db, tracker: tracker, recLimit: recLimit, pages: pages, mux: http.NewServeMux()}
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

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/article/", s.handleArticle)
	s.mux.HandleFunc("/recommendations", s.handleRecommendations)
	s.mux.HandleFunc("/insights", s.handleInsights)
	s.mux.HandleFunc("/digest", s.handleDigest)
	s.mux.HandleFunc("/like/", s.handleLike)
	s.mux.HandleFunc("/api/recommendations", s.handleAPIRecommendations)
	s.mux.HandleFunc("/api/insights", s.handleAPIInsights)
}

// feedItem is an article joined with its per-reader state.
type feedItem struct {
	news.Article
	Liked bool
	Read  bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var articles []news.Article
	var err error
	selected := r.URL.Query().Get("category")
	if selected != "" {
		articles, err = s.db.GetArticlesByCategory(classify.ParseCategory(selected))
	} else {
		articles, err = s.db.GetArticles(50)
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Articles":   s.feedItems(articles),
		"Categories": classify.Categories,
		"Selected":   selected,
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	articleID := strings.TrimPrefix(r.URL.Path, "/article/")
	if articleID == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	article, err := s.db.GetArticle(articleID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if article == nil {
		http.NotFound(w, r)
		return
	}

	// Opening the page is the read event.
	s.tracker.TrackRead(article.ID, article.Title, article.Source, article.Categories)

	summary, _ := s.db.GetArticleSummary(article.ID)
	liked, _ := s.db.IsLiked(article.ID)

	s.render(w, "article.html", map[string]any{
		"Article": article,
		"Summary": summary,
		"Liked":   liked,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	scores, err := s.recommendations()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "recommendations.html", map[string]any{
		"Scores": scores,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	entries := s.tracker.All()
	stats := insights.Compute(entries, time.Now())

	s.render(w, "insights.html", map[string]any{
		"Stats":    stats,
		"Calendar": s.tracker.Calendar(30),
	})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := s.db.GetLatestDigest()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "digest.html", map[string]any{
		"Digest": digest,
	})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	articleID := strings.TrimPrefix(r.URL.Path, "/like/")
	if articleID != "" {
		if _, err := s.db.ToggleLike(articleID); err != nil {
			log.Printf("Error toggling like for %s: %v", articleID, err)
		}
	}

	redirect := r.FormValue("redirect")
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) handleAPIRecommendations(w http.ResponseWriter, r *http.Request) {
	scores, err := s.recommendations()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"recommendations": scores,
		"insights":        recommend.Insights(scores),
	})
}

func (s *Server) handleAPIInsights(w http.ResponseWriter, r *http.Request) {
	entries := s.tracker.All()
	writeJSON(w, map[string]any{
		"stats":    insights.Compute(entries, time.Now()),
		"calendar": s.tracker.Calendar(30),
	})
}

func (s *Server) recommendations() ([]recommend.Score, error) {
	articles, err := s.db.GetArticles(0)
	if err != nil {
		return nil, err
	}
	scorer := recommend.NewScorer(s.tracker.All(), time.Now())
	return scorer.Recommendations(articles, s.recLimit), nil
}

func (s *Server) feedItems(articles []news.Article) []feedItem {
	liked := make(map[string]bool)
	if ids, err := s.db.LikedArticleIDs(); err == nil {
		for _, id := range ids {
			liked[id] = true
		}
	}

	read := make(map[string]bool)
	for _, e := range s.tracker.All() {
		read[e.ArticleID] = true
	}

	items := make([]feedItem, len(articles))
	for i, a := range articles {
		items[i] = feedItem{Article: a, Liked: liked[a.ID], Read: read[a.ID]}
	}
	return items
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

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// ReadingTime estimates reading minutes for a text, at least 1.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := words / wordsPerMinute
	if words%wordsPerMinute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
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
func Serve(db *database.DB, tracker *history.Tracker, recLimit, port int) error {
	srv, err := New(db, tracker, recLimit)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
