package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
)

const (
	defaultDeepSeekURL   = "https://api.deepseek.com/v1/chat/completions"
	defaultDeepSeekModel = "deepseek-chat"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the DeepSeek API
type ChatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// LLMRecommender ranks meal candidates with the DeepSeek chat completions API.
// Its answers are untrusted; the planner validates every field.
type LLMRecommender struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	log    *logger.Logger
}

// NewLLMRecommender creates a recommender. An empty URL or model uses the DeepSeek defaults.
func NewLLMRecommender(apiKey, apiURL, model string, log *logger.Logger) (*LLMRecommender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("DeepSeek API key must be set")
	}
	if apiURL == "" {
		apiURL = defaultDeepSeekURL
	}
	if model == "" {
		model = defaultDeepSeekModel
	}
	return &LLMRecommender{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}, nil
}

const recommenderSystemPrompt = `You are a school nutritionist planning one meal for students.
Choose items only from the candidate list, by their "id". Respond in JSON with this structure:
{
    "items": [
        {
            "item_id": "candidate id",
            "portion_size": 1.0,
            "health_score": 8,
            "appeal_factor": 0.8,
            "reason": "short justification"
        }
    ]
}

Note: portion_size is a multiple of one catalog portion between 0.1 and 3.0.
health_score is between 0 and 10 and appeal_factor between 0 and 1; all three must be numbers.`

type promptCandidate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Fiber    float64  `json:"fiber"`
	Sugar    float64  `json:"sugar"`
	Cost     float64  `json:"cost"`
	Tags     []string `json:"tags,omitempty"`
}

// buildPrompt renders the slot request as the user message.
func buildPrompt(req planner.SuggestRequest) (string, error) {
	candidates := make([]promptCandidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, promptCandidate{
			ID:       c.ID,
			Name:     c.Name,
			Category: c.Category,
			Calories: c.Nutrients.Calories,
			Protein:  c.Nutrients.Protein,
			Fiber:    c.Nutrients.Fiber,
			Sugar:    c.Nutrients.Sugar,
			Cost:     c.Cost,
			Tags:     c.Tags,
		})
	}
	list, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MEAL: %s (day %d of the plan)\n", req.MealType, req.DayIndex+1)
	fmt.Fprintf(&b, "TARGET CALORIES: %.0f kcal\n", req.TargetCalories)
	fmt.Fprintf(&b, "ITEMS: between %d and %d\n", req.MinItems, req.MaxItems)
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "DIETARY RESTRICTIONS: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "ALLERGIES: %s\n", strings.Join(req.Allergies, ", "))
	}
	if len(req.PreferenceHistory) > 0 {
		fmt.Fprintf(&b, "RECENTLY ENJOYED: %s\n", strings.Join(req.PreferenceHistory, ", "))
	}
	fmt.Fprintf(&b, "CANDIDATES: %s\n", list)
	return b.String(), nil
}

// Suggest asks the model for a ranked selection for one meal slot.
func (r *LLMRecommender) Suggest(ctx context.Context, req planner.SuggestRequest) ([]planner.MealPlanItem, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(ChatRequest{
		Model: r.model,
		Messages: []Message{
			{Role: "system", Content: recommenderSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	items, err := parseSuggestion(result.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	r.log.Debug("recommender answered", "meal_type", req.MealType, "day", req.DayIndex, "items", len(items))
	return items, nil
}

// parseSuggestion reads the model's JSON answer, tolerating a markdown code fence.
func parseSuggestion(content string) ([]planner.MealPlanItem, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out struct {
		Items []planner.MealPlanItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse recommender answer: %w", err)
	}
	return out.Items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
