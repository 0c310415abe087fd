package koquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB stores generated problem sets. Persistence lives behind the cmds; the
// validation pipeline itself never touches storage.
type DB struct {
	db *sql.DB
}

// DBProblemSet is a problem set row.
type DBProblemSet struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	NumProblems int       `json:"num_problems"`
	Skipped     int       `json:"skipped"`
	Duplicates  int       `json:"duplicates"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"` // "generating", "completed", "failed"
}

// DBProblem is a question row; Items holds the item list as JSON.
type DBProblem struct {
	ID                  string `json:"id"`
	SetID               string `json:"set_id"`
	ProblemNum          int    `json:"problem_num"`
	Question            string `json:"question"`
	QuestionTranslation string `json:"question_translation"`
	Answer              string `json:"answer"`
	AnswerTranslation   string `json:"answer_translation"`
	GrammarName         string `json:"grammar_name"`
	Items               string `json:"items"`
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS problem_sets (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			num_problems INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			duplicates INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'generating'
		)`,
		`CREATE TABLE IF NOT EXISTS problems (
			id TEXT PRIMARY KEY,
			set_id TEXT NOT NULL,
			problem_num INTEGER NOT NULL,
			question TEXT NOT NULL,
			question_translation TEXT,
			answer TEXT NOT NULL,
			answer_translation TEXT,
			grammar_name TEXT,
			items TEXT NOT NULL,
			FOREIGN KEY (set_id) REFERENCES problem_sets(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateProblemSet inserts a new problem set row.
func (db *DB) CreateProblemSet(set *DBProblemSet) error {
	_, err := db.db.Exec(
		"INSERT INTO problem_sets (id, topic, num_problems, skipped, duplicates, created_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		set.ID, set.Topic, set.NumProblems, set.Skipped, set.Duplicates, set.CreatedAt, set.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create problem set: %w", err)
	}
	return nil
}

// GetProblemSet retrieves a problem set by ID.
func (db *DB) GetProblemSet(id string) (*DBProblemSet, error) {
	var set DBProblemSet
	err := db.db.QueryRow(
		"SELECT id, topic, num_problems, skipped, duplicates, created_at, status FROM problem_sets WHERE id = ?",
		id,
	).Scan(&set.ID, &set.Topic, &set.NumProblems, &set.Skipped, &set.Duplicates, &set.CreatedAt, &set.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("problem set not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get problem set: %w", err)
	}
	return &set, nil
}

// ListProblemSets retrieves all problem sets, newest first, optionally limited.
func (db *DB) ListProblemSets(limit int) ([]DBProblemSet, error) {
	query := "SELECT id, topic, num_problems, skipped, duplicates, created_at, status FROM problem_sets ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list problem sets: %w", err)
	}
	defer rows.Close()

	var sets []DBProblemSet
	for rows.Next() {
		var set DBProblemSet
		err := rows.Scan(&set.ID, &set.Topic, &set.NumProblems, &set.Skipped, &set.Duplicates, &set.CreatedAt, &set.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem set: %w", err)
		}
		sets = append(sets, set)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating problem sets: %w", err)
	}

	return sets, nil
}

// UpdateProblemSetStatus updates a set's status and result counters.
func (db *DB) UpdateProblemSetStatus(id, status string, numProblems, skipped, duplicates int) error {
	_, err := db.db.Exec(
		"UPDATE problem_sets SET status = ?, num_problems = ?, skipped = ?, duplicates = ? WHERE id = ?",
		status, numProblems, skipped, duplicates, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update problem set status: %w", err)
	}
	return nil
}

// CreateProblem inserts a question row.
func (db *DB) CreateProblem(problem *DBProblem) error {
	_, err := db.db.Exec(
		"INSERT INTO problems (id, set_id, problem_num, question, question_translation, answer, answer_translation, grammar_name, items) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		problem.ID, problem.SetID, problem.ProblemNum, problem.Question, problem.QuestionTranslation,
		problem.Answer, problem.AnswerTranslation, problem.GrammarName, problem.Items,
	)
	if err != nil {
		return fmt.Errorf("failed to create problem: %w", err)
	}
	return nil
}

// GetProblems retrieves all questions of a set in order.
func (db *DB) GetProblems(setID string) ([]DBProblem, error) {
	rows, err := db.db.Query(
		"SELECT id, set_id, problem_num, question, question_translation, answer, answer_translation, grammar_name, items FROM problems WHERE set_id = ? ORDER BY problem_num",
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}
	defer rows.Close()

	var problems []DBProblem
	for rows.Next() {
		var p DBProblem
		err := rows.Scan(&p.ID, &p.SetID, &p.ProblemNum, &p.Question, &p.QuestionTranslation,
			&p.Answer, &p.AnswerTranslation, &p.GrammarName, &p.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		problems = append(problems, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating problems: %w", err)
	}

	return problems, nil
}

// ItemsToJSON serializes an item list for the items column.
func ItemsToJSON(items []Item) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal items: %w", err)
	}
	return string(data), nil
}

// JSONToItems deserializes the items column.
func JSONToItems(itemsJSON string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return items, nil
}

// RunGeneration drives a full batch generation for a pre-created set row and
// stores accepted questions as they come back. Intended to run in the
// background behind the webserver.
func (db *DB) RunGeneration(generator *QuizGenerator, setID string, req ProblemSetRequest) {
	logger, err := NewLLMLogger(setID, req)
	if err != nil {
		log.Printf("Failed to create logger for set %s: %v", setID, err)
		// continue without tracing rather than failing the run
	} else {
		generator.SetLogger(logger)
		defer logger.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	set, err := generator.GenerateProblemSet(ctx, req)
	if err != nil {
		log.Printf("Failed to generate problem set %s: %v", setID, err)
		if uerr := db.UpdateProblemSetStatus(setID, "failed", 0, 0, 0); uerr != nil {
			log.Printf("Failed to mark set %s failed: %v", setID, uerr)
		}
		return
	}

	for i, q := range set.Problems {
		itemsJSON, err := ItemsToJSON(q.Items)
		if err != nil {
			log.Printf("Failed to marshal items for question %s: %v", q.ID, err)
			continue
		}
		problem := &DBProblem{
			ID:                  q.ID,
			SetID:               setID,
			ProblemNum:          i + 1,
			Question:            q.Question,
			QuestionTranslation: q.QuestionTranslation,
			Answer:              q.Answer,
			AnswerTranslation:   q.AnswerTranslation,
			GrammarName:         q.GrammarName,
			Items:               itemsJSON,
		}
		if err := db.CreateProblem(problem); err != nil {
			log.Printf("Failed to store question %s: %v", q.ID, err)
		}
	}

	if err := db.UpdateProblemSetStatus(setID, "completed", len(set.Problems), set.Skipped, set.Duplicates); err != nil {
		log.Printf("Failed to mark set %s completed: %v", setID, err)
	}
}
