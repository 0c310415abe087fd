package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"koquiz"
)

func main() {
	var (
		topic       = flag.String("topic", "", "Template topic id (required, see -list-topics)")
		vocabFile   = flag.String("vocab-file", "", "File with one 'korean,english' vocabulary pair per line")
		vocabInline = flag.String("vocab", "", "Inline vocabulary pairs: '한국어:Korean;학교:school'")
		attempts    = flag.Int("attempts", 0, "Validation retry budget per vocabulary entry (default from env)")
		outputFile  = flag.String("output", "", "Output file for the problem set JSON (default: stdout)")
		storeDB     = flag.Bool("store", false, "Also store the problem set in the sqlite database")
		listTopics  = flag.Bool("list-topics", false, "List available template topics and exit")
		verbose     = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	cfg, err := koquiz.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	koquiz.SetVerbose(*verbose || cfg.Verbose)

	if *listTopics {
		for _, t := range koquiz.DefaultCatalog().Topics() {
			fmt.Println(t)
		}
		return
	}

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag (see -list-topics).")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OpenAI API key is required. Set the OPENAI_API_KEY environment variable.")
	}

	vocabulary, err := loadVocabulary(*vocabFile, *vocabInline)
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}
	if len(vocabulary) == 0 {
		log.Fatal("No vocabulary given. Use -vocab-file or -vocab.")
	}

	maxAttempts := cfg.MaxAttempts
	if *attempts > 0 {
		maxAttempts = *attempts
	}

	maker := koquiz.NewOpenAISentenceMaker(cfg.OpenAIAPIKey)
	maker.SetModel(cfg.Model)
	generator := koquiz.NewQuizGenerator(maker)

	req := koquiz.ProblemSetRequest{
		Topic:       *topic,
		Vocabulary:  vocabulary,
		MaxAttempts: maxAttempts,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	set, err := generator.GenerateProblemSet(ctx, req)
	if err != nil {
		log.Fatalf("Failed to generate problem set: %v", err)
	}

	log.Printf("Generated %d problems (%d skipped, %d duplicates) for topic %s",
		len(set.Problems), set.Skipped, set.Duplicates, set.Topic)

	if *storeDB {
		if err := storeSet(cfg.DBPath, set); err != nil {
			log.Fatalf("Failed to store problem set: %v", err)
		}
		log.Printf("Stored problem set %s in %s", set.ID, cfg.DBPath)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal problem set: %v", err)
	}

	if *outputFile == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}
	log.Printf("Wrote problem set to %s", *outputFile)
}

func loadVocabulary(file, inline string) ([]koquiz.VocabEntry, error) {
	var vocabulary []koquiz.VocabEntry

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			korean, english, ok := strings.Cut(line, ",")
			if !ok {
				return nil, fmt.Errorf("bad vocabulary line %q, want 'korean,english'", line)
			}
			vocabulary = append(vocabulary, koquiz.VocabEntry{
				Korean:  strings.TrimSpace(korean),
				English: strings.TrimSpace(english),
			})
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if inline != "" {
		for _, pair := range strings.Split(inline, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			korean, english, ok := strings.Cut(pair, ":")
			if !ok {
				return nil, fmt.Errorf("bad vocabulary pair %q, want 'korean:english'", pair)
			}
			vocabulary = append(vocabulary, koquiz.VocabEntry{
				Korean:  strings.TrimSpace(korean),
				English: strings.TrimSpace(english),
			})
		}
	}

	return vocabulary, nil
}

func storeSet(dbPath string, set *koquiz.ProblemSet) error {
	db, err := koquiz.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		return err
	}

	dbSet := &koquiz.DBProblemSet{
		ID:          set.ID,
		Topic:       set.Topic,
		NumProblems: len(set.Problems),
		Skipped:     set.Skipped,
		Duplicates:  set.Duplicates,
		CreatedAt:   set.CreatedAt,
		Status:      "completed",
	}
	if err := db.CreateProblemSet(dbSet); err != nil {
		return err
	}

	for i, q := range set.Problems {
		itemsJSON, err := koquiz.ItemsToJSON(q.Items)
		if err != nil {
			return err
		}
		problem := &koquiz.DBProblem{
			ID:                  q.ID,
			SetID:               set.ID,
			ProblemNum:          i + 1,
			Question:            q.Question,
			QuestionTranslation: q.QuestionTranslation,
			Answer:              q.Answer,
			AnswerTranslation:   q.AnswerTranslation,
			GrammarName:         q.GrammarName,
			Items:               itemsJSON,
		}
		if err := db.CreateProblem(problem); err != nil {
			return err
		}
	}

	return nil
}
