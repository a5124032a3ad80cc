package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// AIService generates subtask breakdowns with OpenAI GPT. When no API key
// is configured the service stays usable and falls back to the keyword
// heuristics.
type AIService struct {
	client *openai.Client
}

// NewAIService creates a new AIService. An empty apiKey leaves the client
// nil and every call takes the heuristic path.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// BreakdownTask asks the model to split a task into concrete subtasks.
// The returned bool reports whether the model was used; heuristic results
// return false so callers can label the source.
func (s *AIService) BreakdownTask(ctx context.Context, title, description string) ([]SubtaskSuggestion, bool, error) {
	if s.client == nil {
		return HeuristicSubtasks(title, description), false, nil
	}

	prompt := fmt.Sprintf(`You are a task planning assistant. Break the following task into 3-6 concrete subtasks.

Task title: %s
Task description: %s

Return only a JSON array in this shape, with no surrounding text:
[
  {
    "title": "short subtask title",
    "description": "optional detail",
    "priority": "low | medium | high"
  }
]`, title, description)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, false, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, false, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var subtasks []SubtaskSuggestion
	if err := json.Unmarshal([]byte(content), &subtasks); err != nil {
		return nil, false, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return subtasks, true, nil
}
