package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"calmquest-backend/models"
	"calmquest-backend/utils"
)

const (
	coachModel      = "llama-3.3-70b-versatile"
	defaultCoachURL = "https://api.groq.com/openai/v1/chat/completions"
)

// CoachClient wraps the chat-completion API behind the AI coach features.
// The progression engine never touches it; only handlers do.
type CoachClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewCoachClient(apiKey string) *CoachClient {
	return &CoachClient{
		BaseURL: defaultCoachURL,
		APIKey:  apiKey,
		Client:  utils.HTTPClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateMeditationScript asks the model for a guided script matching the
// user's mood and session length.
func (c *CoachClient) GenerateMeditationScript(ctx context.Context, mood models.Mood, durationMinutes int) (string, error) {
	focus := "maintaining balance"
	switch mood {
	case models.MoodStressed:
		focus = "stress relief"
	case models.MoodAnxious:
		focus = "calming anxiety"
	case models.MoodTired:
		focus = "gentle energy"
	}

	prompt := fmt.Sprintf(`You are a calming meditation guide. Create a %d-minute meditation script for someone feeling %s.

The script should:
- Start with a gentle introduction
- Include breathing instructions
- Have calming, supportive language
- End with a peaceful closing
- Be formatted in clear paragraphs

Keep it warm, personal, and helpful. Focus on %s.`, durationMinutes, mood, focus)

	return c.complete(ctx, chatCompletionRequest{
		Model: coachModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a compassionate meditation instructor with expertise in mindfulness and stress management."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
}

// AnalyzeMoodPattern summarizes the last seven mood entries into a short,
// supportive read on the user's practice.
func (c *CoachClient) AnalyzeMoodPattern(ctx context.Context, history []models.MoodEntry) (string, error) {
	if len(history) > 7 {
		history = history[len(history)-7:]
	}
	summary := ""
	for i, entry := range history {
		if i > 0 {
			summary += ", "
		}
		summary += fmt.Sprintf("%s (%s)", entry.Mood, entry.Timestamp.Format("2006-01-02"))
	}

	prompt := fmt.Sprintf(`Based on this user's recent mood history: %s

Provide a brief, supportive analysis (2-3 sentences) that:
1. Identifies any patterns
2. Offers gentle encouragement
3. Suggests a focus area for their practice

Be warm and non-judgmental.`, summary)

	return c.complete(ctx, chatCompletionRequest{
		Model: coachModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a supportive wellness coach analyzing mood patterns to provide helpful insights."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.6,
		MaxTokens:   200,
	})
}

func (c *CoachClient) complete(ctx context.Context, reqBody chatCompletionRequest) (string, error) {
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Coach API returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("chat completion failed: %d", resp.StatusCode)
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
