package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matheusvb/atendai/pkg/logger"
)

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// OpenAIClient fala com qualquer API compatível com chat completions da OpenAI
type OpenAIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewOpenAIClient cria um cliente apontando para a API da OpenAI
func NewOpenAIClient(apiKey string, log logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL: openAIBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  log,
	}
}

// NewDeepseekClient cria um cliente apontando para a API da Deepseek
func NewDeepseekClient(apiKey string, log logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL: deepseekBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []ToolSchema  `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) send(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar requisição: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição HTTP: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro na chamada da API de LLM: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("API de LLM retornou erro",
			"status", resp.StatusCode,
			"body", string(respBody))
		return nil, fmt.Errorf("erro na API de LLM (código %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("resposta vazia da API de LLM")
	}

	c.logger.Debug("Resposta do LLM recebida",
		"prompt_tokens", parsed.Usage.PromptTokens,
		"completion_tokens", parsed.Usage.CompletionTokens)

	return &parsed, nil
}

// ChatWithTools envia uma única rodada de tool-calling com tool_choice auto
func (c *OpenAIClient) ChatWithTools(ctx context.Context, prompt string, tools []ToolSchema, model string) (*ToolResult, error) {
	reqBody := chatRequest{
		Model:      model,
		Messages:   []chatMessage{{Role: "user", Content: prompt}},
		Tools:      tools,
		ToolChoice: "auto",
	}

	parsed, err := c.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	msg := parsed.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return &ToolResult{
			ToolCall: &ToolCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		}, nil
	}

	return &ToolResult{Message: msg.Content}, nil
}

// Complete executa uma completion simples system+user
func (c *OpenAIClient) Complete(ctx context.Context, system, user, model string) (string, error) {
	messages := []chatMessage{}
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	parsed, err := c.send(ctx, chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	return parsed.Choices[0].Message.Content, nil
}
