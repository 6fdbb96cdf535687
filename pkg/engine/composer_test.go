package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/logger"
)

func composeContext() *ComposeContext {
	return &ComposeContext{
		Agent: &agent.Agent{
			Persona:            "Você é a Lia, atendente da clínica Sorriso.",
			CommunicationGuide: "informal e acolhedor",
			GoalGuide:          "agendar consultas",
			Model:              "gpt-4o-mini",
		},
		Intention: &intention.Intention{
			ID:          "int-1",
			ToolName:    "book_meeting",
			Description: "agendar uma consulta",
			Type:        intention.TypeWebhook,
		},
		UserMessage: "marca pra amanhã às 10h",
	}
}

func TestComposerSuccess(t *testing.T) {
	client := &fakeLLM{completeResponse: "Prontinho, sua consulta está marcada!"}
	c := NewComposer(client, logger.NewNopLogger())

	response := c.Success(context.Background(), composeContext(), &ExecutionResult{
		Success: true,
		Data:    map[string]interface{}{"id": "evt-1"},
	})

	assert.Equal(t, "Prontinho, sua consulta está marcada!", response)

	// Persona e guias entram no prompt de sistema
	assert.Contains(t, client.lastSystem, "Lia")
	assert.Contains(t, client.lastSystem, "Estilo de comunicação: informal e acolhedor")
	assert.Contains(t, client.lastSystem, "Objetivo do atendimento: agendar consultas")
	assert.Contains(t, client.lastSystem, "mesmo idioma")

	assert.Contains(t, client.lastUser, "evt-1")
	assert.Contains(t, client.lastUser, "marca pra amanhã às 10h")

	// Intenções comuns não recebem a instrução de link de agenda
	assert.NotContains(t, client.lastUser, "calendar.google.com")
}

func TestComposerSuccessSchedulingLinkInstruction(t *testing.T) {
	client := &fakeLLM{completeResponse: "Agendado!"}
	c := NewComposer(client, logger.NewNopLogger())

	cc := composeContext()
	cc.Intention.ToolName = "schedule_google_meeting"

	c.Success(context.Background(), cc, &ExecutionResult{Success: true})

	assert.Contains(t, client.lastUser, "calendar.google.com/calendar/render?action=TEMPLATE")
	assert.Contains(t, client.lastUser, "Nunca use o formato antigo")
}

func TestComposerSuccessFallback(t *testing.T) {
	client := &fakeLLM{completeErr: errors.New("timeout")}
	c := NewComposer(client, logger.NewNopLogger())

	response := c.Success(context.Background(), composeContext(), &ExecutionResult{Success: true})

	assert.Equal(t, "Prontinho! agendar uma consulta concluída com sucesso.", response)
}

func TestComposerFailure(t *testing.T) {
	client := &fakeLLM{completeResponse: "Poxa, não consegui agendar agora."}
	c := NewComposer(client, logger.NewNopLogger())

	response := c.Failure(context.Background(), composeContext(), errors.New("precondição check falhou (403)"))

	assert.Equal(t, "Poxa, não consegui agendar agora.", response)
	assert.Contains(t, client.lastUser, "precondição check falhou")
	assert.NotContains(t, client.lastUser, "Não cite o nome de nenhum atendente humano")
}

func TestComposerFailureLocalHidesAttendantName(t *testing.T) {
	client := &fakeLLM{completeResponse: "Vou te transferir!"}
	c := NewComposer(client, logger.NewNopLogger())

	cc := composeContext()
	cc.Intention.Type = intention.TypeLocal

	c.Failure(context.Background(), cc, errors.New("fila indisponível"))

	assert.Contains(t, client.lastUser, "Não cite o nome de nenhum atendente humano")
}

func TestComposerFailureFallback(t *testing.T) {
	client := &fakeLLM{completeErr: errors.New("timeout")}
	c := NewComposer(client, logger.NewNopLogger())

	response := c.Failure(context.Background(), composeContext(), errors.New("agenda cheia"))

	assert.Contains(t, response, "Desculpe")
	assert.Contains(t, response, "agendar uma consulta")
	assert.Contains(t, response, "agenda cheia")
}

func TestComposerClarification(t *testing.T) {
	client := &fakeLLM{completeResponse: "Pra qual dia você quer marcar?"}
	c := NewComposer(client, logger.NewNopLogger())

	missing := []intention.Field{
		{Name: "Data", JSONName: "date", Description: "dia desejado da consulta"},
	}
	collected := map[string]interface{}{"email": "ana@example.com"}

	response := c.Clarification(context.Background(), composeContext(), collected, missing)

	assert.Equal(t, "Pra qual dia você quer marcar?", response)
	assert.Contains(t, client.lastUser, "ana@example.com")
	assert.Contains(t, client.lastUser, "Data: dia desejado da consulta")
}

func TestComposerClarificationFallback(t *testing.T) {
	client := &fakeLLM{completeErr: errors.New("timeout")}
	c := NewComposer(client, logger.NewNopLogger())

	missing := []intention.Field{
		{Name: "Data", JSONName: "date"},
		{Name: "Horário", JSONName: "time"},
	}

	response := c.Clarification(context.Background(), composeContext(), nil, missing)

	assert.Equal(t, "Para continuar com agendar uma consulta, preciso de: Data, Horário.", response)
}

func TestComposerSplitResponsesInstruction(t *testing.T) {
	client := &fakeLLM{completeResponse: "ok"}
	c := NewComposer(client, logger.NewNopLogger())

	cc := composeContext()
	cc.Agent.SplitResponses = true
	cc.Agent.ResponseDelimiter = "|||"

	c.Success(context.Background(), cc, &ExecutionResult{Success: true})

	assert.Contains(t, client.lastSystem, `"|||"`)
}
