package koquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// SentenceGenerator produces one candidate question/answer pair patterned on
// a template and exercising a vocabulary word. Implementations are opaque to
// the validation pipeline.
type SentenceGenerator interface {
	Generate(ctx context.Context, template Template, vocab VocabEntry) (*GeneratedSentence, error)
}

// OpenAISentenceMaker generates Korean sentences with GPT-4o structured
// output (tool calling).
type OpenAISentenceMaker struct {
	client *openai.Client
	model  string
	logger *LLMLogger
}

// NewOpenAISentenceMaker creates a sentence maker with an OpenAI client.
func NewOpenAISentenceMaker(apiKey string) *OpenAISentenceMaker {
	return &OpenAISentenceMaker{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SetModel overrides the default model.
func (sm *OpenAISentenceMaker) SetModel(model string) {
	sm.model = model
}

// SetLogger attaches a trace logger for LLM requests and responses.
func (sm *OpenAISentenceMaker) SetLogger(logger *LLMLogger) {
	sm.logger = logger
}

// Generate asks the model for one question/answer pair shaped like the
// template, using the vocabulary word, and returns the four strings.
func (sm *OpenAISentenceMaker) Generate(ctx context.Context, template Template, vocab VocabEntry) (*GeneratedSentence, error) {
	prompt := sm.buildPrompt(template, vocab)
	VerboseLog("Generating sentence for template %s with vocab %s", template.ID, vocab.Korean)

	if sm.logger != nil {
		sm.logger.LogLLMRequest("SentenceMaker", prompt)
	}

	resp, err := sm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: sm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a Korean language teacher writing beginner-level quiz sentences. Always answer with the submit_sentence tool.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_sentence",
						Description: "Submit the generated question/answer pair",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"question": map[string]interface{}{
									"type":        "string",
									"description": "The Korean question sentence",
								},
								"answer": map[string]interface{}{
									"type":        "string",
									"description": "The Korean answer sentence",
								},
								"question_translation": map[string]interface{}{
									"type":        "string",
									"description": "English translation of the question",
								},
								"answer_translation": map[string]interface{}{
									"type":        "string",
									"description": "English translation of the answer",
								},
							},
							"required": []string{"question", "answer", "question_translation", "answer_translation"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_sentence",
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sentence: %w", err)
	}

	if sm.logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		sm.logger.LogLLMResponse("SentenceMaker", responseText)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_sentence" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var sentence GeneratedSentence
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &sentence); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	return &sentence, nil
}

func (sm *OpenAISentenceMaker) buildPrompt(template Template, vocab VocabEntry) string {
	var sb strings.Builder

	sb.WriteString("Write one new Korean question/answer pair modeled on this template:\n\n")
	sb.WriteString(fmt.Sprintf("Template question: %s (%s)\n", template.Question, template.QuestionTranslation))
	sb.WriteString(fmt.Sprintf("Template answer: %s (%s)\n", template.Answer, template.AnswerTranslation))
	if template.GrammarName != "" {
		sb.WriteString(fmt.Sprintf("Grammar point: %s\n", template.GrammarName))
	}
	sb.WriteString(fmt.Sprintf("\nThe answer must use the word: %s (%s)\n\n", vocab.Korean, vocab.English))

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Keep the exact sentence structure of the template: same word count, same particles in the same positions\n")
	sb.WriteString("- Keep the exact verb tense of the template answer\n")
	sb.WriteString("- Use polite -요 endings\n")
	sb.WriteString("- The answer must be a natural reply to the question\n")
	sb.WriteString("- Provide natural English translations for both sentences\n")
	sb.WriteString("- Use the submit_sentence tool to return your sentences\n")

	return sb.String()
}
