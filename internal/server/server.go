// Package server exposes the archive over a read-only JSON API.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hawaiidisco/discoread/internal/config"
	"github.com/hawaiidisco/discoread/internal/database"
	"github.com/hawaiidisco/discoread/internal/digest"
	"github.com/hawaiidisco/discoread/internal/model"
)

// Server serves archive queries and digest generation over HTTP.
type Server struct {
	db       *database.Reader
	gen      *digest.Generator
	settings config.Settings
	router   chi.Router
}

// New creates a server over an opened reader. gen may be nil when no API key
// is configured; digest generation then responds 503.
func New(db *database.Reader, gen *digest.Generator, settings config.Settings) *Server {
	s := &Server{db: db, gen: gen, settings: settings}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleArticles)
		r.Get("/articles/{articleID}", s.handleArticle)
		r.Get("/articles/{articleID}/bookmark", s.handleBookmark)
		r.Get("/feeds", s.handleFeeds)
		r.Get("/recent", s.handleRecent)
		r.Get("/digests", s.handleDigests)
		r.Get("/digests/latest", s.handleLatestDigest)
		r.Get("/stats", s.handleStats)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/digest", s.handleGenerateDigest)
	})

	s.router = r
}

// ServeHTTP makes the server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Printf("discoread API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := database.ListOptions{
		Filter:   model.ParseFilter(q.Get("filter")),
		FeedName: q.Get("feed"),
		Search:   q.Get("search"),
		Limit:    queryInt(q.Get("limit"), 0),
	}
	articles, err := s.db.ListArticles(opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.db.Article(chi.URLParam(r, "articleID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if a == nil {
		http.Error(w, "article not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleBookmark(w http.ResponseWriter, r *http.Request) {
	b, err := s.db.Bookmark(chi.URLParam(r, "articleID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if b == nil {
		http.Error(w, "bookmark not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"bookmark": b,
		"tags":     b.TagList(),
	})
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	names, err := s.db.FeedNames()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"feeds": names})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := queryInt(q.Get("days"), s.settings.PeriodDays)
	limit := queryInt(q.Get("limit"), s.settings.MaxArticles)
	articles, err := s.db.RecentArticles(days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"articles": articles, "days": days})
}

func (s *Server) handleDigests(w http.ResponseWriter, r *http.Request) {
	digests, err := s.db.Digests(queryInt(r.URL.Query().Get("period"), 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"digests": digests})
}

func (s *Server) handleLatestDigest(w http.ResponseWriter, r *http.Request) {
	period := queryInt(r.URL.Query().Get("period"), s.settings.PeriodDays)
	d, err := s.db.LatestDigest(period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if d == nil {
		http.Error(w, "no digest for period", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.db.ArticleCount()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	unread, err := s.db.UnreadCount()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	bookmarked, err := s.db.BookmarkedCount()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"articles":   total,
		"unread":     unread,
		"bookmarked": bookmarked,
		"open":       s.db.IsOpen(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Reload(s.settings.DBPath); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerateDigest(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		http.Error(w, "digest generation not configured", http.StatusServiceUnavailable)
		return
	}

	req := struct {
		PeriodDays  int `json:"period_days"`
		MaxArticles int `json:"max_articles"`
	}{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}
	if req.PeriodDays <= 0 {
		req.PeriodDays = s.settings.PeriodDays
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = s.settings.MaxArticles
	}

	articles, err := s.db.RecentArticles(req.PeriodDays, req.MaxArticles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if len(articles) == 0 {
		http.Error(w, "no articles in period", http.StatusUnprocessableEntity)
		return
	}

	content, err := s.gen.Generate(r.Context(), articles, req.PeriodDays)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"content":       content,
		"article_count": len(articles),
		"period_days":   req.PeriodDays,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
