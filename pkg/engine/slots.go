package engine

import (
	"github.com/matheusvb/atendai/internal/domain/intention"
)

// MissingFields calcula quais campos obrigatórios da intenção ainda não foram
// extraídos. Um campo é considerado ausente quando a chave não existe no mapa
// ou quando o valor é falsy ("" / 0 / false). Um campo booleano obrigatório
// cujo valor correto é literalmente false cai nessa heurística e é tratado
// como ausente — comportamento conhecido, mantido até definição de produto.
func MissingFields(intn *intention.Intention, extracted map[string]interface{}) []intention.Field {
	var missing []intention.Field

	for _, field := range intn.Fields {
		if !field.Required {
			continue
		}
		value, ok := extracted[field.JSONName]
		if !ok || !Truthy(value) {
			missing = append(missing, field)
		}
	}

	return missing
}

// NewPendingState monta o estado de preenchimento pendente devolvido ao
// chamador quando a execução é interrompida por campos faltantes.
func NewPendingState(intn *intention.Intention, extracted map[string]interface{}, missing []intention.Field) *PendingState {
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, f.JSONName)
	}

	collected := make(map[string]interface{})
	for key, value := range extracted {
		if Truthy(value) {
			collected[key] = value
		}
	}

	return &PendingState{
		IntentionID: intn.ID,
		Collected:   collected,
		Missing:     names,
	}
}
