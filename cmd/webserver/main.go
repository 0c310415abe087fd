package main

import (
	"encoding/gob"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"koquiz"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Server exposes the segmentation editor and batch generation over JSON.
// The editor's current item list lives in the cookie session, so toggle
// clicks work against server-held state.
type Server struct {
	db        *koquiz.DB
	store     *sessions.CookieStore
	segmenter *koquiz.Segmenter
	catalog   *koquiz.Catalog
	apiKey    string
	model     string
	attempts  int
}

// newGenerator builds a fresh generator for one run, so each run gets its own
// trace logger without sharing state across goroutines.
func (s *Server) newGenerator() *koquiz.QuizGenerator {
	maker := koquiz.NewOpenAISentenceMaker(s.apiKey)
	maker.SetModel(s.model)
	gen := koquiz.NewQuizGenerator(maker)
	gen.SetCatalog(s.catalog)
	return gen
}

const sessionName = "koquiz-editor"

func init() {
	gob.Register([]koquiz.Item{})
}

func main() {
	cfg, err := koquiz.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	koquiz.SetVerbose(cfg.Verbose)

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	db, err := koquiz.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	srv := &Server{
		db:        db,
		store:     sessions.NewCookieStore([]byte(cfg.SessionKey)),
		segmenter: koquiz.NewSegmenter(nil),
		catalog:   koquiz.DefaultCatalog(),
		apiKey:    cfg.OpenAIAPIKey,
		model:     cfg.Model,
		attempts:  cfg.MaxAttempts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/topics", srv.handleTopics)
	mux.HandleFunc("POST /api/segment", srv.handleSegment)
	mux.HandleFunc("POST /api/toggle", srv.handleToggle)
	mux.HandleFunc("POST /api/sets", srv.handleCreateSet)
	mux.HandleFunc("GET /api/sets", srv.handleListSets)
	mux.HandleFunc("GET /api/sets/{id}", srv.handleGetSet)

	log.Printf("Listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, mux))
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topics": s.catalog.Topics(),
	})
}

// handleSegment segments a sentence and stores the items as the session's
// editor state.
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sentence string `json:"sentence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Sentence == "" {
		writeError(w, http.StatusBadRequest, "sentence is required")
		return
	}

	items := s.segmenter.Segment(req.Sentence)

	session, _ := s.store.Get(r, sessionName)
	session.Values["items"] = items
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":         items,
		"reconstructed": koquiz.Reconstruct(items),
	})
}

// handleToggle applies one editor click to the session's item list. The
// client may also send its own items to toggle stateless.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int           `json:"index"`
		Items []koquiz.Item `json:"items,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, _ := s.store.Get(r, sessionName)
	items := req.Items
	if items == nil {
		stored, ok := session.Values["items"].([]koquiz.Item)
		if !ok {
			writeError(w, http.StatusBadRequest, "no editor state; call /api/segment first or send items")
			return
		}
		items = stored
	}

	toggled := s.segmenter.ToggleItem(items, req.Index)

	session.Values["items"] = toggled
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":         toggled,
		"reconstructed": koquiz.Reconstruct(toggled),
		"changed":       len(toggled) != len(items),
	})
}

// handleCreateSet kicks off a batch generation run in the background and
// returns the set id immediately.
func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var req koquiz.ProblemSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Topic == "" || len(req.Vocabulary) == 0 {
		writeError(w, http.StatusBadRequest, "topic and vocabulary are required")
		return
	}
	if _, ok := s.catalog.Lookup(req.Topic); !ok {
		writeError(w, http.StatusBadRequest, "unknown topic")
		return
	}
	if req.MaxAttempts <= 0 {
		req.MaxAttempts = s.attempts
	}

	setID := uuid.NewString()
	dbSet := &koquiz.DBProblemSet{
		ID:        setID,
		Topic:     req.Topic,
		CreatedAt: time.Now(),
		Status:    "generating",
	}
	if err := s.db.CreateProblemSet(dbSet); err != nil {
		log.Printf("Failed to create problem set row: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create problem set")
		return
	}

	go s.db.RunGeneration(s.newGenerator(), setID, req)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":     setID,
		"status": "generating",
	})
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.db.ListProblemSets(50)
	if err != nil {
		log.Printf("Failed to list problem sets: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list problem sets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	set, err := s.db.GetProblemSet(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "problem set not found")
		return
	}

	problems, err := s.db.GetProblems(id)
	if err != nil {
		log.Printf("Failed to get problems for set %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load problems")
		return
	}

	out := make([]map[string]interface{}, 0, len(problems))
	for _, p := range problems {
		items, err := koquiz.JSONToItems(p.Items)
		if err != nil {
			log.Printf("Bad items JSON for problem %s: %v", p.ID, err)
			continue
		}
		out = append(out, map[string]interface{}{
			"id":                   p.ID,
			"problem_num":          p.ProblemNum,
			"question":             p.Question,
			"question_translation": p.QuestionTranslation,
			"answer":               p.Answer,
			"answer_translation":   p.AnswerTranslation,
			"grammar_name":         p.GrammarName,
			"items":                items,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"set":      set,
		"problems": out,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
