package dto

import (
	"time"

	"github.com/matheusvb/atendai/internal/domain/agent"
)

// AvailabilityWindowDTO representa uma janela de atendimento semanal
type AvailabilityWindowDTO struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
}

// AvailabilityDTO representa as regras de disponibilidade de agendamento
type AvailabilityDTO struct {
	Enabled            bool                    `json:"enabled"`
	MinDurationMinutes int                     `json:"min_duration_minutes"`
	Windows            []AvailabilityWindowDTO `json:"windows"`
}

// AgentRequest representa os dados de um agente para criação ou atualização
type AgentRequest struct {
	Name               string           `json:"name" binding:"required"`
	Persona            string           `json:"persona"`
	CommunicationGuide string           `json:"communication_guide"`
	GoalGuide          string           `json:"goal_guide"`
	Model              string           `json:"model"`
	TimezoneLabel      string           `json:"timezone_label"`
	VoiceEnabled       bool             `json:"voice_enabled"`
	VoiceID            string           `json:"voice_id"`
	SplitResponses     bool             `json:"split_responses"`
	ResponseDelimiter  string           `json:"response_delimiter"`
	Availability       *AvailabilityDTO `json:"availability"`
}

// AgentResponse representa a resposta com dados de um agente
type AgentResponse struct {
	ID                 string          `json:"id"`
	TenantID           string          `json:"tenant_id"`
	Name               string          `json:"name"`
	Status             string          `json:"status"`
	Persona            string          `json:"persona"`
	CommunicationGuide string          `json:"communication_guide"`
	GoalGuide          string          `json:"goal_guide"`
	Model              string          `json:"model"`
	TimezoneLabel      string          `json:"timezone_label"`
	VoiceEnabled       bool            `json:"voice_enabled"`
	VoiceID            string          `json:"voice_id"`
	SplitResponses     bool            `json:"split_responses"`
	ResponseDelimiter  string          `json:"response_delimiter"`
	Availability       AvailabilityDTO `json:"availability"`
	GoogleConnected    bool            `json:"google_connected"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// GoogleCredentialRequest representa o refresh token obtido no fluxo OAuth
type GoogleCredentialRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ToAgentResponse converte um agente do domínio para DTO de resposta.
// A credencial Google nunca é exposta; apenas o indicador de conexão.
func ToAgentResponse(a *agent.Agent) AgentResponse {
	windows := make([]AvailabilityWindowDTO, len(a.Availability.Windows))
	for i, w := range a.Availability.Windows {
		windows[i] = AvailabilityWindowDTO{Weekday: w.Weekday, Start: w.Start, End: w.End}
	}

	return AgentResponse{
		ID:                 a.ID,
		TenantID:           a.TenantID,
		Name:               a.Name,
		Status:             string(a.Status),
		Persona:            a.Persona,
		CommunicationGuide: a.CommunicationGuide,
		GoalGuide:          a.GoalGuide,
		Model:              a.Model,
		TimezoneLabel:      a.TimezoneLabel,
		VoiceEnabled:       a.VoiceEnabled,
		VoiceID:            a.VoiceID,
		SplitResponses:     a.SplitResponses,
		ResponseDelimiter:  a.ResponseDelimiter,
		Availability: AvailabilityDTO{
			Enabled:            a.Availability.Enabled,
			MinDurationMinutes: a.Availability.MinDurationMinutes,
			Windows:            windows,
		},
		GoogleConnected: a.Google.RefreshToken != "",
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToAvailability converte o DTO de disponibilidade para o domínio
func (d *AvailabilityDTO) ToAvailability() agent.Availability {
	windows := make([]agent.AvailabilityWindow, len(d.Windows))
	for i, w := range d.Windows {
		windows[i] = agent.AvailabilityWindow{Weekday: w.Weekday, Start: w.Start, End: w.End}
	}
	return agent.Availability{
		Enabled:            d.Enabled,
		MinDurationMinutes: d.MinDurationMinutes,
		Windows:            windows,
	}
}
