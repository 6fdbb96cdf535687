package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

// Composer transforma resultados do executor em respostas em linguagem
// natural. Três caminhos (sucesso, erro, esclarecimento), todos com fallback
// determinístico quando a chamada ao LLM falha — o usuário nunca fica sem
// resposta.
type Composer struct {
	llm    llm.Client
	logger logger.Logger
}

// NewComposer cria um novo compositor de respostas
func NewComposer(client llm.Client, log logger.Logger) *Composer {
	return &Composer{llm: client, logger: log}
}

// ComposeContext agrupa o contexto comum aos três caminhos de composição
type ComposeContext struct {
	Agent       *agent.Agent
	Intention   *intention.Intention
	UserMessage string
}

// systemPrompt monta a parte compartilhada: persona, estilo, objetivo e a
// instrução de responder no idioma da última mensagem do usuário.
func (c *Composer) systemPrompt(cc *ComposeContext) string {
	var sb strings.Builder

	if cc.Agent.Persona != "" {
		sb.WriteString(cc.Agent.Persona)
		sb.WriteString("\n")
	}
	if cc.Agent.CommunicationGuide != "" {
		sb.WriteString("Estilo de comunicação: ")
		sb.WriteString(cc.Agent.CommunicationGuide)
		sb.WriteString("\n")
	}
	if cc.Agent.GoalGuide != "" {
		sb.WriteString("Objetivo do atendimento: ")
		sb.WriteString(cc.Agent.GoalGuide)
		sb.WriteString("\n")
	}

	sb.WriteString("Responda sempre no mesmo idioma da última mensagem do usuário.\n")

	if cc.Agent.SplitResponses {
		delim := cc.Agent.ResponseDelimiter
		if delim == "" {
			delim = "\n\n"
		}
		sb.WriteString(fmt.Sprintf(
			"Divida respostas longas em segmentos curtos separados por %q.\n", delim))
	}

	return sb.String()
}

// Success compõe a confirmação de uma intenção executada com sucesso
func (c *Composer) Success(ctx context.Context, cc *ComposeContext, result *ExecutionResult) string {
	data, _ := json.Marshal(result.Data)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"A ação %q foi concluída com sucesso. Confirme a conclusão para o usuário de forma natural.\n",
		cc.Intention.Description))
	sb.WriteString("Resultado da ação:\n")
	sb.Write(data)
	sb.WriteString("\n")

	if isSchedulingTool(cc.Intention.ToolName) {
		sb.WriteString("\nSe houver evento agendado, monte um link de \"adicionar evento\" do Google Calendar " +
			"(formato calendar.google.com/calendar/render?action=TEMPLATE) usando apenas description, " +
			"criador, início e fim presentes no resultado; infira o restante. " +
			"Nunca use o formato antigo de link de visualização de evento.\n")
	}

	sb.WriteString("\nÚltima mensagem do usuário: ")
	sb.WriteString(cc.UserMessage)

	response, err := c.llm.Complete(ctx, c.systemPrompt(cc), sb.String(), cc.Agent.Model)
	if err != nil {
		c.logger.Error("Falha ao compor resposta de sucesso, usando fallback", "error", err)
		return fmt.Sprintf("Prontinho! %s concluída com sucesso.", cc.Intention.Description)
	}
	return response
}

// Failure compõe uma explicação não técnica de uma execução que falhou
func (c *Composer) Failure(ctx context.Context, cc *ComposeContext, execErr error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"A ação %q não pôde ser concluída. Explique o problema ao usuário em tom de desculpas, "+
			"sem termos técnicos, e sugira tentar de novo ou uma alternativa.\n",
		cc.Intention.Description))
	sb.WriteString("Detalhe interno do erro (não repita literalmente): ")
	sb.WriteString(execErr.Error())
	sb.WriteString("\n")

	if cc.Intention.Type == intention.TypeLocal {
		// Transferência para humano é assíncrona; não prometer quem atende
		sb.WriteString("Não cite o nome de nenhum atendente humano na resposta.\n")
	}

	sb.WriteString("\nÚltima mensagem do usuário: ")
	sb.WriteString(cc.UserMessage)

	response, err := c.llm.Complete(ctx, c.systemPrompt(cc), sb.String(), cc.Agent.Model)
	if err != nil {
		c.logger.Error("Falha ao compor resposta de erro, usando fallback", "error", err)
		return fmt.Sprintf("Desculpe, não consegui concluir %s agora (%s). Pode tentar novamente em instantes?",
			cc.Intention.Description, execErr.Error())
	}
	return response
}

// Clarification compõe o pedido dos campos obrigatórios que ainda faltam
func (c *Composer) Clarification(ctx context.Context, cc *ComposeContext, collected map[string]interface{}, missing []intention.Field) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"O usuário quer %q, mas faltam informações obrigatórias.\n", cc.Intention.Description))

	if len(collected) > 0 {
		known, _ := json.Marshal(collected)
		sb.WriteString("Já sabemos: ")
		sb.Write(known)
		sb.WriteString("\n")
	}

	sb.WriteString("Peça explicitamente:\n")
	for _, field := range missing {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", field.Name, field.Description))
	}

	sb.WriteString("\nÚltima mensagem do usuário: ")
	sb.WriteString(cc.UserMessage)

	response, err := c.llm.Complete(ctx, c.systemPrompt(cc), sb.String(), cc.Agent.Model)
	if err != nil {
		c.logger.Error("Falha ao compor pedido de esclarecimento, usando fallback", "error", err)
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.Name
		}
		return fmt.Sprintf("Para continuar com %s, preciso de: %s.",
			cc.Intention.Description, strings.Join(names, ", "))
	}
	return response
}

func isSchedulingTool(toolName string) bool {
	name := strings.TrimSpace(toolName)
	return name == scheduleMeetingTool || name == suggestSlotsTool
}
