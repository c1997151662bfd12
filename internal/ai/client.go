// Package ai adapts the OpenAI chat completion API into portfolio
// generation: structured data from a free-form prompt or extracted resume
// text, iterative refinement over a conversation, and a standalone HTML
// rendering of the structured data.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/model"
)

const (
	generationModel = openai.GPT4o

	// Data generation keeps a moderate temperature for consistent JSON;
	// HTML rendering runs slightly hotter for design variety.
	dataTemperature = 0.7
	htmlTemperature = 0.8

	maxTokensPrompt = 3000
	maxTokensResume = 3500
	maxTokensRefine = 3500
	maxTokensHTML   = 16000
)

// Client generates portfolio content through the OpenAI API.
type Client struct {
	api *openai.Client
}

// New returns a client using the given API key.
func New(apiKey string) *Client {
	return &Client{api: openai.NewClient(apiKey)}
}

// FromPrompt builds a portfolio data document from a free-form description.
func (c *Client) FromPrompt(ctx context.Context, prompt, template string) (*model.PortfolioData, error) {
	user := fmt.Sprintf("Template style: %s\n\nUser request: %s", template, prompt)
	raw, err := c.completeJSON(ctx, promptSystemFromPrompt, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, maxTokensPrompt)
	if err != nil {
		return nil, err
	}
	return parsePortfolioData(raw)
}

// FromResume builds a portfolio data document from extracted resume text.
func (c *Client) FromResume(ctx context.Context, resumeText, template string) (*model.PortfolioData, error) {
	user := fmt.Sprintf("Template: %s\n\nResume:\n%s", template, resumeText)
	raw, err := c.completeJSON(ctx, promptSystemFromResume, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, maxTokensResume)
	if err != nil {
		return nil, err
	}
	return parsePortfolioData(raw)
}

// Refine applies a change request to an existing document. history carries
// earlier turns of the refinement conversation, oldest first.
func (c *Client) Refine(ctx context.Context, data *model.PortfolioData, request string, history []model.ChatMessage) (*model.PortfolioData, error) {
	current, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ai: encoding current portfolio: %w", err)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Current portfolio:\n" + string(current)},
	}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: request,
	})

	raw, err := c.completeJSON(ctx, promptSystemRefine, messages, maxTokensRefine)
	if err != nil {
		return nil, err
	}
	return parsePortfolioData(raw)
}

// ToHTML renders the structured data into a complete standalone HTML page.
func (c *Client) ToHTML(ctx context.Context, data *model.PortfolioData, template string) (string, error) {
	doc, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ai: encoding portfolio data: %w", err)
	}
	user := fmt.Sprintf("Template style: %s\n\nPortfolio data:\n%s\n\nGenerate complete HTML with inline CSS.",
		template, doc)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: generationModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: promptSystemHTML},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: htmlTemperature,
		MaxTokens:   maxTokensHTML,
	})
	if err != nil {
		return "", apperror.Upstream("HTML generation failed: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", apperror.Upstream("HTML generation returned no content")
	}
	return stripCodeFences(resp.Choices[0].Message.Content), nil
}

// EstimateSeconds is the rough wall-clock estimate shown to the user before
// a generation starts.
func EstimateSeconds(inputType string, hasResume bool) int {
	estimate := 30
	if inputType == "resume" || hasResume {
		estimate += 20
	}
	return estimate
}

// completeJSON runs a chat completion in JSON mode with the given system
// prompt and returns the raw response text.
func (c *Client) completeJSON(ctx context.Context, system string, messages []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: generationModel,
		Messages: append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
		}, messages...),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: dataTemperature,
		MaxTokens:   maxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apperror.Upstream("portfolio generation failed: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", apperror.Upstream("portfolio generation returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// parsePortfolioData decodes a generation response and checks the required
// top-level keys. The raw-map check runs before the typed decode so that a
// response missing a key fails loudly instead of yielding zero values.
func parsePortfolioData(raw string) (*model.PortfolioData, error) {
	raw = stripCodeFences(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, apperror.Upstream("portfolio generation returned invalid JSON")
	}
	for _, required := range []string{"personalInfo", "bio", "skills", "projects"} {
		if _, ok := keys[required]; !ok {
			return nil, apperror.Upstream("invalid portfolio structure returned by AI")
		}
	}

	var data model.PortfolioData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, apperror.Upstream("portfolio generation returned invalid JSON")
	}
	return &data, nil
}

// stripCodeFences removes a markdown code fence wrapper if the backend added
// one despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
