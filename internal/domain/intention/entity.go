package intention

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyToolName  = errors.New("toolName não pode ser vazio")
	ErrEmptyURL       = errors.New("url não pode ser vazia para intenções webhook")
	ErrHandlerMissing = errors.New("intenção local sem handler vinculado")
)

// Type define como a intenção é executada
type Type string

const (
	// TypeLocal executa um handler registrado no próprio processo
	TypeLocal Type = "LOCAL"

	// TypeWebhook executa uma chamada HTTP configurada pelo tenant
	TypeWebhook Type = "WEBHOOK"
)

// FieldType define o tipo semântico de um campo de intenção
type FieldType string

const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeURL      FieldType = "URL"
	FieldTypeDate     FieldType = "DATE"
	FieldTypeDateTime FieldType = "DATETIME"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeBoolean  FieldType = "BOOLEAN"
)

// Field representa um argumento que a intenção aceita
type Field struct {
	Name        string    `json:"name"`      // Nome de exibição
	JSONName    string    `json:"json_name"` // Chave usada no schema e nos argumentos extraídos
	Type        FieldType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// QueryParam representa um parâmetro de query string; o valor é um template
type QueryParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Precondition é um passo HTTP executado antes da chamada principal
type Precondition struct {
	Name             string            `json:"name"`
	URL              string            `json:"url"`
	Method           string            `json:"method"`
	Headers          map[string]string `json:"headers,omitempty"`
	QueryParams      []QueryParam      `json:"query_params,omitempty"`
	Body             string            `json:"body,omitempty"`
	FailureCondition string            `json:"failure_condition,omitempty"`
	FailureMessage   string            `json:"failure_message,omitempty"`
	SuccessAction    string            `json:"success_action,omitempty"`
}

// LocalHandler é o callable vinculado a intenções do tipo LOCAL
type LocalHandler func(ctx context.Context, fields map[string]interface{}) (interface{}, error)

// Intention representa uma ação configurada pelo tenant que o agente pode executar
type Intention struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	AgentID     string `json:"agent_id"`
	ToolName    string `json:"tool_name"`
	Description string `json:"description"`
	Type        Type   `json:"type"`

	Fields []Field `json:"fields"`

	// Configuração da chamada principal (somente WEBHOOK)
	Method        string            `json:"method,omitempty"`
	URL           string            `json:"url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          string            `json:"body,omitempty"`
	QueryParams   []QueryParam      `json:"query_params,omitempty"`
	Preconditions []Precondition    `json:"preconditions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Handler vinculado em tempo de bootstrap; nunca persistido
	localHandler LocalHandler
}

// BindLocalHandler vincula o callable de uma intenção LOCAL
func (i *Intention) BindLocalHandler(h LocalHandler) {
	i.localHandler = h
}

// LocalHandler retorna o handler vinculado (nil se não houver)
func (i *Intention) LocalHandler() LocalHandler {
	return i.localHandler
}

// Eligible informa se a intenção pode ser mapeada para um tool schema.
// Exige toolName não vazio (após trim) e lista de campos presente.
func (i *Intention) Eligible() bool {
	return strings.TrimSpace(i.ToolName) != "" && i.Fields != nil
}

// RequiredFields retorna os campos obrigatórios da intenção
func (i *Intention) RequiredFields() []Field {
	var required []Field
	for _, f := range i.Fields {
		if f.Required {
			required = append(required, f)
		}
	}
	return required
}

// Validate verifica a consistência mínima da configuração
func (i *Intention) Validate() error {
	if strings.TrimSpace(i.ToolName) == "" {
		return ErrEmptyToolName
	}
	if i.Type == TypeWebhook && strings.TrimSpace(i.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}
