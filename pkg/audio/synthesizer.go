// Package audio sintetiza respostas de voz para agentes com voz habilitada.
package audio

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

const defaultVoice = "alloy"

// Synthesizer converte texto em áudio
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// OpenAISynthesizer usa o endpoint de speech da OpenAI
type OpenAISynthesizer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewOpenAISynthesizer cria o sintetizador de voz
func NewOpenAISynthesizer(apiKey string, log logger.Logger) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		baseURL:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		model:      "tts-1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log,
	}
}

// WithBaseURL troca o endpoint (usado em testes)
func (s *OpenAISynthesizer) WithBaseURL(u string) *OpenAISynthesizer {
	s.baseURL = u
	return s
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize gera áudio OGG/Opus para envio via WhatsApp
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = defaultVoice
	}

	payload, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          voiceID,
		ResponseFormat: "opus",
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao montar requisição de síntese: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erro ao montar requisição de síntese: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao chamar serviço de voz: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler áudio sintetizado: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serviço de voz retornou %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Debug("Áudio sintetizado", "bytes", len(body), "voice", voiceID)
	return body, nil
}
