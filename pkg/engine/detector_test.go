package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/chat"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

// fakeLLM implementa llm.Client para os testes do motor
type fakeLLM struct {
	toolResult *llm.ToolResult
	toolErr    error

	completeResponse string
	completeErr      error

	lastPrompt string
	lastTools  []llm.ToolSchema
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) ChatWithTools(ctx context.Context, prompt string, tools []llm.ToolSchema, model string) (*llm.ToolResult, error) {
	f.lastPrompt = prompt
	f.lastTools = tools
	return f.toolResult, f.toolErr
}

func (f *fakeLLM) Complete(ctx context.Context, system, user, model string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.completeResponse, f.completeErr
}

func detectorIntentions() []*intention.Intention {
	return []*intention.Intention{
		{
			ID:       "int-1",
			ToolName: "book_meeting",
			Fields: []intention.Field{
				{Name: "Data", JSONName: "date", Required: true},
			},
		},
	}
}

func TestDetectToolCall(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{
				Name:      "book_meeting",
				Arguments: `{"date": "2026-03-10"}`,
			},
		},
	}

	d := NewDetector(client, logger.NewNopLogger())
	result, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "quero marcar uma reunião",
		Intentions: detectorIntentions(),
	})

	require.NoError(t, err)
	require.True(t, result.Matched())
	assert.Equal(t, "int-1", result.Intention.ID)
	assert.Equal(t, "2026-03-10", result.Fields["date"])
}

func TestDetectFallbackMessage(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{Message: "Claro! Sobre o que seria a reunião?"},
	}

	d := NewDetector(client, logger.NewNopLogger())
	result, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "oi",
		Intentions: detectorIntentions(),
	})

	require.NoError(t, err)
	assert.False(t, result.Matched())
	assert.Equal(t, "Claro! Sobre o que seria a reunião?", result.FallbackMessage)
}

func TestDetectNoSignal(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}}

	d := NewDetector(client, logger.NewNopLogger())
	result, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "oi",
		Intentions: detectorIntentions(),
	})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDetectUnknownToolIsDropped(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "tool_removida", Arguments: `{}`},
		},
	}

	d := NewDetector(client, logger.NewNopLogger())
	result, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "faz aquilo",
		Intentions: detectorIntentions(),
	})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDetectInvalidArguments(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{quebrado`},
		},
	}

	d := NewDetector(client, logger.NewNopLogger())
	_, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "marca pra amanhã",
		Intentions: detectorIntentions(),
	})

	assert.Error(t, err)
}

func TestDetectLLMErrorDegradesToFreeForm(t *testing.T) {
	client := &fakeLLM{toolErr: errors.New("timeout")}

	d := NewDetector(client, logger.NewNopLogger())
	result, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "oi",
		Intentions: detectorIntentions(),
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Matched())
	assert.Empty(t, result.FallbackMessage)
}

func TestDetectPromptComposition(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}}

	history := []chat.Message{
		{Role: chat.RoleUser, Content: "oi", CreatedAt: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		{Role: chat.RoleAssistant, Content: "olá!", CreatedAt: time.Date(2026, 3, 9, 10, 0, 5, 0, time.UTC)},
	}

	d := NewDetector(client, logger.NewNopLogger())
	_, err := d.Detect(context.Background(), &DetectRequest{
		Prompt:     "quero marcar pra amanhã",
		Intentions: detectorIntentions(),
		Chat: &chat.Chat{
			ContactName:  "Ana",
			ContactPhone: "+5511999990000",
			Metadata:     map[string]string{"origem": "campanha"},
		},
		History:       history,
		TimezoneLabel: "Brasília (GMT-3)",
	})
	require.NoError(t, err)

	// Datas relativas são ancoradas na última mensagem do histórico
	assert.Contains(t, client.lastPrompt, "2026-03-09T10:00:05Z")
	assert.Contains(t, client.lastPrompt, "Histórico da conversa:")
	assert.Contains(t, client.lastPrompt, "Ana (+5511999990000)")
	assert.Contains(t, client.lastPrompt, "quero marcar pra amanhã")
	assert.Contains(t, client.lastPrompt, "Brasília (GMT-3)")
	assert.Contains(t, client.lastPrompt, "campanha")
	assert.NotContains(t, client.lastPrompt, "Não há histórico")

	require.Len(t, client.lastTools, 1)
	assert.Equal(t, "book_meeting", client.lastTools[0].Function.Name)
}
