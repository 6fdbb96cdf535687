package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/logger"
)

func TestBuildToolSchemas(t *testing.T) {
	intentions := []*intention.Intention{
		{
			ID:          "int-1",
			ToolName:    "book_meeting",
			Description: "Agenda uma reunião",
			Fields: []intention.Field{
				{Name: "E-mail", JSONName: "email", Type: intention.FieldTypeText, Description: "E-mail do contato", Required: true},
				{Name: "Início", JSONName: "startDateTime", Type: intention.FieldTypeDateTime, Required: true},
				{Name: "Convidados", JSONName: "guests", Type: intention.FieldTypeNumber, Required: false},
				{Name: "Confirmado", JSONName: "confirmed", Type: intention.FieldTypeBoolean, Required: false},
			},
		},
		{
			// Sem toolName: inelegível
			ID:     "int-2",
			Fields: []intention.Field{{Name: "X", JSONName: "x"}},
		},
		{
			// Sem lista de campos: inelegível
			ID:       "int-3",
			ToolName: "sem_campos",
		},
	}

	schemas := BuildToolSchemas(intentions, logger.NewNopLogger())
	require.Len(t, schemas, 1)

	fn := schemas[0].Function
	assert.Equal(t, "function", schemas[0].Type)
	assert.Equal(t, "book_meeting", fn.Name)
	assert.Equal(t, "Agenda uma reunião", fn.Description)
	assert.Equal(t, "object", fn.Parameters.Type)

	assert.Equal(t, "string", fn.Parameters.Properties["email"].Type)
	assert.Equal(t, "E-mail do contato", fn.Parameters.Properties["email"].Description)
	assert.Equal(t, "string", fn.Parameters.Properties["startDateTime"].Type)
	assert.Equal(t, "number", fn.Parameters.Properties["guests"].Type)
	assert.Equal(t, "boolean", fn.Parameters.Properties["confirmed"].Type)

	assert.ElementsMatch(t, []string{"email", "startDateTime"}, fn.Parameters.Required)
}

func TestBuildToolSchemasSkipsFieldWithoutJSONName(t *testing.T) {
	intentions := []*intention.Intention{
		{
			ID:       "int-1",
			ToolName: "cadastrar",
			Fields: []intention.Field{
				{Name: "Nome", JSONName: "name", Required: true},
				{Name: "Quebrado", JSONName: "  ", Required: true},
			},
		},
	}

	schemas := BuildToolSchemas(intentions, logger.NewNopLogger())
	require.Len(t, schemas, 1)

	params := schemas[0].Function.Parameters
	assert.Len(t, params.Properties, 1)
	assert.Equal(t, []string{"name"}, params.Required)
}

func TestBuildToolSchemasDefaultDescription(t *testing.T) {
	intentions := []*intention.Intention{
		{ID: "int-1", ToolName: "sem_descricao", Fields: []intention.Field{}},
	}

	schemas := BuildToolSchemas(intentions, logger.NewNopLogger())
	require.Len(t, schemas, 1)
	assert.Equal(t, defaultToolDescription, schemas[0].Function.Description)
}

func TestConvertFieldTypeToJSONSchema(t *testing.T) {
	assert.Equal(t, "string", convertFieldTypeToJSONSchema(intention.FieldTypeText))
	assert.Equal(t, "string", convertFieldTypeToJSONSchema(intention.FieldTypeURL))
	assert.Equal(t, "string", convertFieldTypeToJSONSchema(intention.FieldTypeDate))
	assert.Equal(t, "string", convertFieldTypeToJSONSchema("date_time"))
	assert.Equal(t, "number", convertFieldTypeToJSONSchema("number"))
	assert.Equal(t, "boolean", convertFieldTypeToJSONSchema(" BOOLEAN "))
	assert.Equal(t, "string", convertFieldTypeToJSONSchema("tipo_exotico"))
}
