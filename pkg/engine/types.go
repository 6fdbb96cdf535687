package engine

import (
	"github.com/matheusvb/atendai/internal/domain/intention"
)

// DetectionResult é o resultado transitório de uma rodada de detecção.
// Três formas possíveis:
//  1. Intention + Fields — o modelo escolheu uma ferramenta
//  2. Intention nil + FallbackMessage — o modelo respondeu texto direto
//  3. nil — nenhum sinal (caminho defensivo)
type DetectionResult struct {
	Intention       *intention.Intention   `json:"-"`
	Fields          map[string]interface{} `json:"fields,omitempty"`
	FallbackMessage string                 `json:"fallback_message,omitempty"`
}

// Matched informa se uma intenção foi detectada
func (r *DetectionResult) Matched() bool {
	return r != nil && r.Intention != nil
}

// PendingState representa o preenchimento de slots em andamento. É devolvido
// ao chamador — o motor não persiste nem mescla estado entre turnos; a camada
// de chat reapresenta os campos pendentes via histórico da conversa.
type PendingState struct {
	IntentionID string                 `json:"intention_id"`
	Collected   map[string]interface{} `json:"collected"`
	Missing     []string               `json:"missing"`
}

// ExecutionResult é o resultado normalizado da execução de uma intenção
type ExecutionResult struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	StatusCode int         `json:"status_code,omitempty"`
}
