package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheusvb/atendai/internal/domain/intention"
)

func bookingIntention() *intention.Intention {
	return &intention.Intention{
		ID:       "int-1",
		ToolName: "book_meeting",
		Fields: []intention.Field{
			{Name: "E-mail", JSONName: "email", Type: intention.FieldTypeText, Required: true},
			{Name: "Data", JSONName: "date", Type: intention.FieldTypeDate, Required: true},
			{Name: "Observações", JSONName: "notes", Type: intention.FieldTypeText, Required: false},
		},
	}
}

func TestMissingFields(t *testing.T) {
	intn := bookingIntention()

	missing := MissingFields(intn, map[string]interface{}{"email": "ana@example.com"})
	if assert.Len(t, missing, 1) {
		assert.Equal(t, "date", missing[0].JSONName)
	}

	missing = MissingFields(intn, map[string]interface{}{
		"email": "ana@example.com",
		"date":  "2026-03-10",
	})
	assert.Empty(t, missing)

	// Campos opcionais nunca aparecem como faltantes
	missing = MissingFields(intn, map[string]interface{}{})
	assert.Len(t, missing, 2)
}

func TestMissingFieldsFalsyValues(t *testing.T) {
	intn := &intention.Intention{
		ID:       "int-2",
		ToolName: "toggle",
		Fields: []intention.Field{
			{Name: "Confirmação", JSONName: "confirm", Type: intention.FieldTypeBoolean, Required: true},
		},
	}

	// String vazia conta como ausente
	missing := MissingFields(intn, map[string]interface{}{"confirm": ""})
	assert.Len(t, missing, 1)

	// Booleano false cai na heurística de falsy e é tratado como ausente
	missing = MissingFields(intn, map[string]interface{}{"confirm": false})
	assert.Len(t, missing, 1)

	missing = MissingFields(intn, map[string]interface{}{"confirm": true})
	assert.Empty(t, missing)
}

func TestNewPendingState(t *testing.T) {
	intn := bookingIntention()
	extracted := map[string]interface{}{
		"email": "ana@example.com",
		"date":  "",
		"notes": "trazer contrato",
	}
	missing := MissingFields(intn, extracted)

	pending := NewPendingState(intn, extracted, missing)

	assert.Equal(t, "int-1", pending.IntentionID)
	assert.Equal(t, []string{"date"}, pending.Missing)

	// Só valores truthy entram no coletado
	assert.Equal(t, map[string]interface{}{
		"email": "ana@example.com",
		"notes": "trazer contrato",
	}, pending.Collected)
}
