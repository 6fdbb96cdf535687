package engine

import (
	"strings"

	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

const defaultToolDescription = "No description provided."

// BuildToolSchemas converte as intenções configuradas em tool schemas
// consumíveis pela interface de tool-calling do LLM. Intenções sem toolName
// ou sem lista de campos são ignoradas; campos sem jsonName são pulados.
func BuildToolSchemas(intentions []*intention.Intention, log logger.Logger) []llm.ToolSchema {
	schemas := make([]llm.ToolSchema, 0, len(intentions))

	for _, intn := range intentions {
		if !intn.Eligible() {
			log.Warn("Intenção inelegível para tool schema, ignorando",
				"intention_id", intn.ID,
				"tool_name", intn.ToolName)
			continue
		}

		properties := make(map[string]llm.ToolProperty)
		required := []string{}

		for _, field := range intn.Fields {
			if strings.TrimSpace(field.JSONName) == "" {
				log.Warn("Campo sem jsonName não pode ser solicitado ao LLM, pulando",
					"intention", intn.ToolName,
					"field", field.Name)
				continue
			}

			properties[field.JSONName] = llm.ToolProperty{
				Type:        convertFieldTypeToJSONSchema(field.Type),
				Description: field.Description,
			}

			if field.Required {
				required = append(required, field.JSONName)
			}
		}

		description := intn.Description
		if description == "" {
			description = defaultToolDescription
		}

		schemas = append(schemas, llm.ToolSchema{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        strings.TrimSpace(intn.ToolName),
				Description: description,
				Parameters: llm.ToolParameters{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}

	return schemas
}

// convertFieldTypeToJSONSchema mapeia o tipo semântico do campo para o tipo
// de JSON Schema correspondente. Tipos desconhecidos viram string.
func convertFieldTypeToJSONSchema(t intention.FieldType) string {
	switch strings.ToUpper(strings.TrimSpace(string(t))) {
	case "TEXT", "URL", "DATE", "DATETIME", "DATE_TIME":
		return "string"
	case "NUMBER":
		return "number"
	case "BOOLEAN":
		return "boolean"
	default:
		return "string"
	}
}
