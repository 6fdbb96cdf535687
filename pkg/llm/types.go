package llm

import "context"

// ToolSchema é o descritor de função exposto à interface de tool-calling do LLM
type ToolSchema struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction descreve a função em si
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters segue o formato de JSON Schema de objeto
type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required"`
}

// ToolProperty descreve um parâmetro individual
type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ToolCall é a chamada de ferramenta retornada pelo modelo
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON serializado pelo modelo
}

// ToolResult é o resultado de uma rodada de tool-calling:
// ou uma chamada de ferramenta, ou uma mensagem de texto do assistente.
type ToolResult struct {
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Client é a interface consumida pelo motor de intenções
type Client interface {
	// ChatWithTools envia um prompt com tool_choice auto e interpreta a resposta
	ChatWithTools(ctx context.Context, prompt string, tools []ToolSchema, model string) (*ToolResult, error)

	// Complete executa uma completion simples system+user, sem ferramentas
	Complete(ctx context.Context, system, user, model string) (string, error)
}
