// Package ai adapts HTTP chat-completion providers (Ollama, OpenAI,
// Anthropic) to the orchestrator's oracle port.
//
// The oracle contract is deliberately forgiving: Query never returns a Go
// error. Provider failures come back as error-describing text so a campaign
// always receives something to continue with.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

type httpOracle struct {
	name       string
	model      domain.ModelDefinition
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(domain.ModelDefinition, string, string) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ModelDefinition) error
}

func newHTTPOracle(name string, model domain.ModelDefinition, client *http.Client, adapter providerAdapter) ports.Oracle {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultOracleTimeout + 10*time.Second}
	}
	return &httpOracle{
		name:       name,
		model:      model,
		httpClient: client,
		adapter:    adapter,
	}
}

func (o *httpOracle) Name() string {
	return o.name
}

// Query implements ports.Oracle.
func (o *httpOracle) Query(ctx context.Context, prompt, systemPrompt string) string {
	requestBody, err := o.adapter.buildRequest(o.model, prompt, systemPrompt)
	if err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := o.adapter.setHeaders(httpReq, o.model); err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Sprintf("AI Error: %s: %s", o.name, resp.Status)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}

	content, err := o.adapter.parseResponse(responseBody.Bytes())
	if err != nil {
		return fmt.Sprintf("AI Error: %v", err)
	}
	return content
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    func(*http.Request, domain.ModelDefinition) error { return nil },
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildChatCompletionRequest(model domain.ModelDefinition, prompt, systemPrompt string) ([]byte, error) {
	var messages []map[string]string
	if systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	request := map[string]interface{}{
		"model":    model.ModelID,
		"messages": messages,
		"stream":   false,
	}
	if model.MaxTokens > 0 {
		request["max_tokens"] = model.MaxTokens
	}
	return json.Marshal(request)
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		// Ollama's native chat endpoint returns a single message object.
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) > 0 {
		return strings.TrimSpace(response.Choices[0].Message.Content), nil
	}
	return strings.TrimSpace(response.Message.Content), nil
}

func buildAnthropicRequest(model domain.ModelDefinition, prompt, systemPrompt string) ([]byte, error) {
	request := map[string]interface{}{
		"model":      model.ModelID,
		"max_tokens": defaultInt(model.MaxTokens, 1024),
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": prompt},
				},
			},
		},
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	return json.Marshal(request)
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := getEnv(model.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)
	return nil
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := getEnv(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}

func getEnv(primary, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	return os.Getenv(fallback)
}

func defaultInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
