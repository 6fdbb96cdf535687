package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matheusvb/atendai/internal/domain/chat"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

// Detector decide se a mensagem do usuário dispara uma intenção configurada,
// usando uma única rodada de tool-calling do LLM.
type Detector struct {
	llm    llm.Client
	logger logger.Logger
}

// NewDetector cria um novo detector de intenções
func NewDetector(client llm.Client, log logger.Logger) *Detector {
	return &Detector{llm: client, logger: log}
}

// DetectRequest agrupa as entradas de uma rodada de detecção
type DetectRequest struct {
	Prompt        string
	Intentions    []*intention.Intention
	Model         string
	Chat          *chat.Chat
	History       []chat.Message
	TimezoneLabel string
}

// Detect executa a detecção. Erros do LLM são registrados e degradados para
// um resultado vazio — a conversa segue pelo caminho de resposta livre.
// Retorna nil quando não há sinal algum (forma 3).
func (d *Detector) Detect(ctx context.Context, req *DetectRequest) (*DetectionResult, error) {
	tools := BuildToolSchemas(req.Intentions, d.logger)

	prompt := d.buildPrompt(req)

	result, err := d.llm.ChatWithTools(ctx, prompt, tools, req.Model)
	if err != nil {
		d.logger.Error("Erro na rodada de detecção, degradando para resposta livre", "error", err)
		return &DetectionResult{}, nil
	}

	if result.ToolCall == nil {
		if result.Message != "" {
			// O modelo preferiu responder texto direto
			return &DetectionResult{FallbackMessage: result.Message}, nil
		}
		return nil, nil
	}

	matched := findByToolName(req.Intentions, result.ToolCall.Name)
	if matched == nil {
		// Drift de schema: o modelo chamou uma ferramenta que não existe mais
		d.logger.Warn("Tool chamada não corresponde a nenhuma intenção",
			"tool", result.ToolCall.Name)
		return nil, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(result.ToolCall.Arguments), &fields); err != nil {
		return nil, fmt.Errorf("argumentos da tool %s não são JSON válido: %w", result.ToolCall.Name, err)
	}

	d.logger.Info("Intenção detectada",
		"intention", matched.ToolName,
		"fields", len(fields))

	return &DetectionResult{Intention: matched, Fields: fields}, nil
}

// buildPrompt monta o prompt composto da detecção: instruções de interpretação
// de datas relativas, inferência de contato, metadados do chat, histórico e a
// mensagem nova do usuário.
func (d *Detector) buildPrompt(req *DetectRequest) string {
	latest := time.Now()
	if len(req.History) > 0 {
		latest = req.History[len(req.History)-1].CreatedAt
	}

	var sb strings.Builder

	sb.WriteString("Você é o detector de intenções de um atendente virtual.\n")
	sb.WriteString(fmt.Sprintf(
		"Interprete expressões relativas de data e hora (\"amanhã\", \"próxima terça\", \"daqui a duas horas\") em relação a %s.\n",
		latest.Format(time.RFC3339)))
	sb.WriteString("Quando contactName, contactPhone ou campos de agendamento não estiverem explícitos na mensagem, infira-os do contexto da conversa.\n")
	if len(req.History) == 0 {
		sb.WriteString("Não há histórico: se o usuário pedir agendamento sem data, assuma hoje.\n")
	}
	sb.WriteString("Nunca pergunte o fuso horário ao usuário; use sempre o fuso do agente.\n")

	if req.Chat != nil && len(req.Chat.Metadata) > 0 {
		if meta, err := json.Marshal(req.Chat.Metadata); err == nil {
			sb.WriteString("\nDados do chat: ")
			sb.Write(meta)
			sb.WriteString("\n")
		}
	}

	if len(req.History) > 0 {
		sb.WriteString("\nHistórico da conversa:\n")
		for _, msg := range req.History {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
	}

	tag := ""
	if req.Chat != nil {
		tag = req.Chat.ContactPhone
		if req.Chat.ContactName != "" {
			tag = fmt.Sprintf("%s (%s)", req.Chat.ContactName, req.Chat.ContactPhone)
		}
	}
	sb.WriteString(fmt.Sprintf("\nNova mensagem de %s: %s\n", tag, req.Prompt))

	if req.TimezoneLabel != "" {
		sb.WriteString(fmt.Sprintf("\nFuso horário do agente: %s.\n", req.TimezoneLabel))
	}

	return sb.String()
}

func findByToolName(intentions []*intention.Intention, name string) *intention.Intention {
	for _, intn := range intentions {
		if strings.TrimSpace(intn.ToolName) == name {
			return intn
		}
	}
	return nil
}
