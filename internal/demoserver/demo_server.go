package demoserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Item is the resource exposed under /api/items.
type Item struct {
	ID int    `json:"id"`
	Q  string `json:"q"`
}

// DemoServer serves pages that issue XHR traffic against a small JSON API.
type DemoServer struct {
	cfg   Config
	pages []PageDefinition

	mu     sync.RWMutex
	items  map[int]Item
	byQ    map[string]int
	nextID int
}

// NewDemoServer creates a new demo server instance. Item 1 ("x") exists from
// the start so that repeated runs see identical responses.
func NewDemoServer(cfg Config) *DemoServer {
	return &DemoServer{
		cfg:    cfg,
		pages:  GetAllPages(),
		items:  map[int]Item{1: {ID: 1, Q: "x"}},
		byQ:    map[string]int{"x": 1},
		nextID: 2,
	}
}

// Handler returns the router. Useful with httptest.NewServer.
func (s *DemoServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/", s.indexHandler)
	for _, p := range s.pages {
		r.Get(p.Path, s.pageHandler(p))
	}

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", s.listItemsHandler)
		r.Post("/", s.createItemHandler)
		r.Get("/{id}", s.getItemHandler)
	})
	r.Get("/slow", s.slowHandler)

	return r
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// cors allows the "null" origin of pages opened from file://.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *DemoServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexPage.Execute(w, pageData{Origin: origin(r), Pages: s.pages})
}

func (s *DemoServer) pageHandler(p PageDefinition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.Template.Execute(w, pageData{Origin: origin(r)}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *DemoServer) listItemsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	items := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	writeJSON(w, http.StatusOK, items)
}

// createItemHandler answers {"id":N}. Posting an existing q returns its id.
func (s *DemoServer) createItemHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q string `json:"q"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"q\": <non-empty string>}"})
		return
	}

	s.mu.Lock()
	id, ok := s.byQ[req.Q]
	if !ok {
		id = s.nextID
		s.nextID++
		s.items[id] = Item{ID: id, Q: req.Q}
		s.byQ[req.Q] = id
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusCreated)
	}
	_, _ = fmt.Fprintf(w, `{"id":%d}`, id)
}

func (s *DemoServer) getItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	s.mu.RLock()
	it, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *DemoServer) slowHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(time.Duration(s.cfg.SlowDelay) * time.Second):
		w.WriteHeader(http.StatusNoContent)
	}
}
