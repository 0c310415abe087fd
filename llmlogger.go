package koquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger records the full trace of one batch generation run to a file:
// LLM requests/responses, per-attempt validation outcomes, skips and
// duplicates. It is injected as a nil-able observer; the generation pipeline
// works without it.
type LLMLogger struct {
	file  *os.File
	mu    sync.Mutex
	setID string
}

// NewLLMLogger creates a trace logger for one problem-set generation run.
func NewLLMLogger(setID string, req ProblemSetRequest) (*LLMLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", setID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:  file,
		setID: setID,
	}

	logger.Logf("=== Problem Set Generation Log ===\n")
	logger.Logf("Set ID: %s\n", setID)
	logger.Logf("Topic: %s\n", req.Topic)
	logger.Logf("Vocabulary entries: %d\n", len(req.Vocabulary))
	logger.Logf("Max attempts: %d\n", req.MaxAttempts)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("==============================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogAttempt logs the outcome of one generation attempt for a template.
func (ll *LLMLogger) LogAttempt(templateID string, attempt int, outcome string) {
	ll.Logf("Template %s attempt %d: %s\n", templateID, attempt, outcome)
}

// LogSkip logs a vocabulary entry dropped after exhausting its retry budget.
func (ll *LLMLogger) LogSkip(vocab string, err error) {
	ll.Logf("Vocab %s: SKIPPED - %v\n", vocab, err)
}

// LogDuplicate logs a question accepted despite colliding with an earlier
// question/answer pair.
func (ll *LLMLogger) LogDuplicate(questionID, key string) {
	ll.Logf("Question %s: DUPLICATE ACCEPTED - %s\n", questionID, key)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Fprintf(ll.file, "[%s] === Generation Complete: %s ===\n", timestamp, time.Now().Format(time.RFC3339))
		return ll.file.Close()
	}
	return nil
}
