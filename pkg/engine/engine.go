// Package engine implementa o motor de detecção e execução de intenções:
// mapeamento de tool schemas, detecção via tool-calling, preenchimento de
// slots, execução templatada com precondições e composição de respostas.
package engine

import (
	"context"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/chat"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/logger"
)

// Engine orquestra um turno completo: detecção → slots → execução → resposta.
// Não guarda estado entre turnos; todas as entradas vêm do chamador e todas
// as saídas retornam a ele.
type Engine struct {
	detector *Detector
	executor *Executor
	composer *Composer
	logger   logger.Logger
}

// New cria o motor de intenções
func New(detector *Detector, executor *Executor, composer *Composer, log logger.Logger) *Engine {
	return &Engine{
		detector: detector,
		executor: executor,
		composer: composer,
		logger:   log,
	}
}

// TurnRequest agrupa as entradas de um turno de conversa
type TurnRequest struct {
	Agent       *agent.Agent
	Chat        *chat.Chat
	History     []chat.Message
	Intentions  []*intention.Intention
	UserMessage string

	// Pending é o estado de slots do turno anterior, quando houver
	Pending *PendingState
}

// TurnResult é a saída de um turno
type TurnResult struct {
	// Resposta pronta para o usuário (vazia quando FreeForm)
	Response string

	// Estado de preenchimento pendente, quando a execução foi interrompida
	Pending *PendingState

	// Intenção detectada neste turno, se houver
	Intention *intention.Intention

	// Executed indica que a intenção foi executada com sucesso
	Executed bool

	// FreeForm indica que nenhuma intenção foi detectada e o chamador deve
	// gerar a resposta livre do assistente
	FreeForm bool
}

// ProcessTurn processa um turno de ponta a ponta
func (e *Engine) ProcessTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	detection, err := e.detector.Detect(ctx, &DetectRequest{
		Prompt:        req.UserMessage,
		Intentions:    req.Intentions,
		Model:         req.Agent.Model,
		Chat:          req.Chat,
		History:       req.History,
		TimezoneLabel: req.Agent.TimezoneLabel,
	})
	if err != nil {
		return nil, err
	}

	if detection == nil || (!detection.Matched() && detection.FallbackMessage == "") {
		return &TurnResult{FreeForm: true}, nil
	}

	if !detection.Matched() {
		// O modelo respondeu texto direto em vez de chamar uma ferramenta
		return &TurnResult{Response: detection.FallbackMessage}, nil
	}

	cc := &ComposeContext{
		Agent:       req.Agent,
		Intention:   detection.Intention,
		UserMessage: req.UserMessage,
	}

	// Completa o turno anterior: slots já coletados valem quando o modelo
	// não os extraiu de novo nesta mensagem
	if req.Pending != nil && req.Pending.IntentionID == detection.Intention.ID {
		for key, value := range req.Pending.Collected {
			if !Truthy(detection.Fields[key]) {
				detection.Fields[key] = value
			}
		}
	}

	missing := MissingFields(detection.Intention, detection.Fields)
	if len(missing) > 0 {
		pending := NewPendingState(detection.Intention, detection.Fields, missing)
		e.logger.Info("Campos obrigatórios faltando, pedindo esclarecimento",
			"intention", detection.Intention.ToolName,
			"missing", pending.Missing)

		return &TurnResult{
			Response:  e.composer.Clarification(ctx, cc, pending.Collected, missing),
			Pending:   pending,
			Intention: detection.Intention,
		}, nil
	}

	result, execErr := e.executor.Execute(ctx, &ExecuteRequest{
		Intention:    detection.Intention,
		Fields:       detection.Fields,
		AgentID:      req.Agent.ID,
		Location:     LoadZoneLabel(req.Agent.TimezoneLabel),
		Intentions:   req.Intentions,
		Availability: &req.Agent.Availability,
	})
	if execErr != nil {
		e.logger.Warn("Execução de intenção falhou",
			"intention", detection.Intention.ToolName,
			"error", execErr)
		return &TurnResult{
			Response:  e.composer.Failure(ctx, cc, execErr),
			Intention: detection.Intention,
		}, nil
	}

	return &TurnResult{
		Response:  e.composer.Success(ctx, cc, result),
		Intention: detection.Intention,
		Executed:  true,
	}, nil
}
