package dto

import (
	"time"

	"github.com/matheusvb/atendai/internal/domain/intention"
)

// IntentionFieldDTO representa um campo aceito pela intenção
type IntentionFieldDTO struct {
	Name        string `json:"name" binding:"required"`
	JSONName    string `json:"json_name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// QueryParamDTO representa um parâmetro de query string templatado
type QueryParamDTO struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// PreconditionDTO representa um passo HTTP executado antes da chamada principal
type PreconditionDTO struct {
	Name             string            `json:"name"`
	URL              string            `json:"url" binding:"required"`
	Method           string            `json:"method"`
	Headers          map[string]string `json:"headers"`
	QueryParams      []QueryParamDTO   `json:"query_params"`
	Body             string            `json:"body"`
	FailureCondition string            `json:"failure_condition"`
	FailureMessage   string            `json:"failure_message"`
	SuccessAction    string            `json:"success_action"`
}

// IntentionRequest representa os dados de uma intenção para criação ou atualização
type IntentionRequest struct {
	ToolName    string `json:"tool_name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=LOCAL WEBHOOK"`

	Fields []IntentionFieldDTO `json:"fields" binding:"required"`

	Method        string            `json:"method"`
	URL           string            `json:"url"`
	Headers       map[string]string `json:"headers"`
	Body          string            `json:"body"`
	QueryParams   []QueryParamDTO   `json:"query_params"`
	Preconditions []PreconditionDTO `json:"preconditions"`
}

// IntentionResponse representa a resposta com dados de uma intenção
type IntentionResponse struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	AgentID     string `json:"agent_id"`
	ToolName    string `json:"tool_name"`
	Description string `json:"description"`
	Type        string `json:"type"`

	Fields []IntentionFieldDTO `json:"fields"`

	Method        string            `json:"method,omitempty"`
	URL           string            `json:"url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          string            `json:"body,omitempty"`
	QueryParams   []QueryParamDTO   `json:"query_params,omitempty"`
	Preconditions []PreconditionDTO `json:"preconditions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToIntention converte o DTO de requisição para o domínio
func (r *IntentionRequest) ToIntention(tenantID, agentID string) *intention.Intention {
	fields := make([]intention.Field, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = intention.Field{
			Name:        f.Name,
			JSONName:    f.JSONName,
			Type:        intention.FieldType(f.Type),
			Description: f.Description,
			Required:    f.Required,
		}
	}

	now := time.Now()
	return &intention.Intention{
		TenantID:      tenantID,
		AgentID:       agentID,
		ToolName:      r.ToolName,
		Description:   r.Description,
		Type:          intention.Type(r.Type),
		Fields:        fields,
		Method:        r.Method,
		URL:           r.URL,
		Headers:       r.Headers,
		Body:          r.Body,
		QueryParams:   toQueryParams(r.QueryParams),
		Preconditions: toPreconditions(r.Preconditions),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ToIntentionResponse converte uma intenção do domínio para DTO de resposta
func ToIntentionResponse(i *intention.Intention) IntentionResponse {
	fields := make([]IntentionFieldDTO, len(i.Fields))
	for idx, f := range i.Fields {
		fields[idx] = IntentionFieldDTO{
			Name:        f.Name,
			JSONName:    f.JSONName,
			Type:        string(f.Type),
			Description: f.Description,
			Required:    f.Required,
		}
	}

	return IntentionResponse{
		ID:            i.ID,
		TenantID:      i.TenantID,
		AgentID:       i.AgentID,
		ToolName:      i.ToolName,
		Description:   i.Description,
		Type:          string(i.Type),
		Fields:        fields,
		Method:        i.Method,
		URL:           i.URL,
		Headers:       i.Headers,
		Body:          i.Body,
		QueryParams:   fromQueryParams(i.QueryParams),
		Preconditions: fromPreconditions(i.Preconditions),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toQueryParams(params []QueryParamDTO) []intention.QueryParam {
	if params == nil {
		return nil
	}
	out := make([]intention.QueryParam, len(params))
	for i, p := range params {
		out[i] = intention.QueryParam{Name: p.Name, Value: p.Value}
	}
	return out
}

func fromQueryParams(params []intention.QueryParam) []QueryParamDTO {
	if params == nil {
		return nil
	}
	out := make([]QueryParamDTO, len(params))
	for i, p := range params {
		out[i] = QueryParamDTO{Name: p.Name, Value: p.Value}
	}
	return out
}

func toPreconditions(pres []PreconditionDTO) []intention.Precondition {
	if pres == nil {
		return nil
	}
	out := make([]intention.Precondition, len(pres))
	for i, p := range pres {
		out[i] = intention.Precondition{
			Name:             p.Name,
			URL:              p.URL,
			Method:           p.Method,
			Headers:          p.Headers,
			QueryParams:      toQueryParams(p.QueryParams),
			Body:             p.Body,
			FailureCondition: p.FailureCondition,
			FailureMessage:   p.FailureMessage,
			SuccessAction:    p.SuccessAction,
		}
	}
	return out
}

func fromPreconditions(pres []intention.Precondition) []PreconditionDTO {
	if pres == nil {
		return nil
	}
	out := make([]PreconditionDTO, len(pres))
	for i, p := range pres {
		out[i] = PreconditionDTO{
			Name:             p.Name,
			URL:              p.URL,
			Method:           p.Method,
			Headers:          p.Headers,
			QueryParams:      fromQueryParams(p.QueryParams),
			Body:             p.Body,
			FailureCondition: p.FailureCondition,
			FailureMessage:   p.FailureMessage,
			SuccessAction:    p.SuccessAction,
		}
	}
	return out
}
