package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/crm-timesheet-api/internal/constants"
)

type AIService struct {
	client *openai.Client
	model  string
}

// TaskDraft is a task suggested from free text. Drafts are never stored.
type TaskDraft struct {
	Title    string  `json:"title"`
	Details  string  `json:"details"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"due_date"`
}

func NewAIService(apiKey, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// DraftTasks analyzes text and extracts tasks using OpenAI chat completion
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	today := time.Now().Format(constants.DateLayout)
	prompt := fmt.Sprintf(`You extract actionable work items for a CRM team's task tracker.

Today: %s

Text:
%s

Return a JSON array of at most %d tasks in this shape:
[
  {
    "title": "short task title",
    "details": "what needs to be done",
    "priority": "Low, Medium or High",
    "due_date": "YYYY-MM-DD, or null when no deadline is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next Friday") to dates
- Return JSON only, without prose or code fences`, today, text, constants.MaxAIGeneratedTasks)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
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
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseTaskDrafts(resp.Choices[0].Message.Content)
}

// parseTaskDrafts decodes the model output, tolerating a surrounding code fence.
func parseTaskDrafts(content string) ([]TaskDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}
