package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCondition(t *testing.T) {
	scope := &ExprScope{
		PreJSON: map[string]interface{}{
			"status": "busy",
			"count":  float64(3),
			"nested": map[string]interface{}{"ok": true},
			"items":  []interface{}{"a", "b"},
		},
		Fields: map[string]interface{}{
			"email":   "ana@example.com",
			"confirm": false,
		},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"igualdade de string", "preJson.status == 'busy'", true},
		{"desigualdade", "preJson.status != 'free'", true},
		{"comparação numérica", "preJson.count > 2", true},
		{"comparação falsa", "preJson.count >= 4", false},
		{"caminho aninhado", "preJson.nested.ok", true},
		{"índice de lista", "preJson.items[1] == 'b'", true},
		{"índice fora do intervalo", "preJson.items[9] == 'a'", false},
		{"e lógico", "preJson.status == 'busy' && preJson.count == 3", true},
		{"ou lógico", "preJson.status == 'free' || preJson.count == 3", true},
		{"negação", "!preJson.nested.ok", false},
		{"identificador solto resolve em fields", "email == 'ana@example.com'", true},
		{"campo booleano falso", "fields.confirm", false},
		{"parênteses", "(preJson.count > 1) && (preJson.count < 5)", true},
		{"null", "preJson.missing == null", true},
		{"expressão vazia nunca falha", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalCondition(tt.expr, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConditionInvalid(t *testing.T) {
	scope := &ExprScope{}

	for _, expr := range []string{
		"preJson.status ==",
		"(preJson.count > 1",
		"'aberta",
		"preJson.items[",
	} {
		_, err := EvalCondition(expr, scope)
		assert.Error(t, err, "expressão %q deveria falhar", expr)
	}
}

func TestEvalAssignments(t *testing.T) {
	scope := &ExprScope{
		PreJSON: map[string]interface{}{
			"id":    "res-42",
			"slots": []interface{}{map[string]interface{}{"start": "09:00"}},
		},
		Fields: map[string]interface{}{"email": "ana@example.com"},
	}

	captured, err := EvalAssignments("resourceId = preJson.id; firstSlot = preJson.slots[0].start; contato = fields.email", scope)
	require.NoError(t, err)

	assert.Equal(t, "res-42", captured["resourceId"])
	assert.Equal(t, "09:00", captured["firstSlot"])
	assert.Equal(t, "ana@example.com", captured["contato"])
}

func TestEvalAssignmentsInvalid(t *testing.T) {
	scope := &ExprScope{}

	_, err := EvalAssignments("= preJson.id", scope)
	assert.Error(t, err)

	_, err = EvalAssignments("1x = preJson.id", scope)
	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(float64(0)))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy([]interface{}{}))
	assert.False(t, Truthy(map[string]interface{}{}))

	assert.True(t, Truthy(true))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(float64(1)))
	assert.True(t, Truthy([]interface{}{1}))
	assert.True(t, Truthy(map[string]interface{}{"a": 1}))
}
