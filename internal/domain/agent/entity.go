package agent

import (
	"errors"
	"time"
)

var (
	ErrEmptyName    = errors.New("nome do agente não pode ser vazio")
	ErrNotFound     = errors.New("agente não encontrado")
	ErrNoCredential = errors.New("agente sem credencial Google configurada")
)

// Status representa o estado do agente
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// AvailabilityWindow define uma janela de atendimento em um dia da semana.
// Weekday segue time.Weekday (0 = domingo). Horários no formato "15:04".
type AvailabilityWindow struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Availability agrupa as regras de disponibilidade para agendamento
type Availability struct {
	Enabled            bool                 `json:"enabled"`
	MinDurationMinutes int                  `json:"min_duration_minutes"`
	Windows            []AvailabilityWindow `json:"windows"`
}

// GoogleCredential guarda o estado do token OAuth do agente
type GoogleCredential struct {
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"access_token"`
	Expiry       time.Time `json:"expiry"`
}

// Valid informa se o access token atual ainda pode ser usado
func (c GoogleCredential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.Expiry.Add(-30*time.Second))
}

// Agent representa a configuração do atendente virtual de um tenant
type Agent struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Status   Status `json:"status"`

	// Guias usados na composição de respostas
	Persona            string `json:"persona"`
	CommunicationGuide string `json:"communication_guide"`
	GoalGuide          string `json:"goal_guide"`

	// Modelo LLM usado na detecção e na composição
	Model string `json:"model"`

	// Rótulo de fuso horário exibido ao tenant (ex: "Brasília (GMT-3)")
	TimezoneLabel string `json:"timezone_label"`

	// Comportamento de resposta
	VoiceEnabled      bool   `json:"voice_enabled"`
	VoiceID           string `json:"voice_id"`
	SplitResponses    bool   `json:"split_responses"`
	ResponseDelimiter string `json:"response_delimiter"`

	Availability Availability     `json:"availability"`
	Google       GoogleCredential `json:"google"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAgent cria um novo agente com os padrões do sistema
func NewAgent(tenantID, name string) (*Agent, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Agent{
		TenantID:          tenantID,
		Name:              name,
		Status:            StatusActive,
		Model:             "gpt-4o-mini",
		ResponseDelimiter: "\n\n",
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
