package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheusvb/atendai/internal/adapter/api/dto"
	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/pkg/tenant"
)

// AgentController gerencia as requisições relacionadas aos agentes
type AgentController struct {
	agentRepository agent.Repository
}

// NewAgentController cria uma nova instância de AgentController
func NewAgentController(agentRepository agent.Repository) *AgentController {
	return &AgentController{
		agentRepository: agentRepository,
	}
}

// Create cria um novo agente
// @Summary Cria um novo agente
// @Description Cria um novo agente de atendimento para o tenant
// @Tags agents
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param agent body dto.AgentRequest true "Dados do agente"
// @Success 201 {object} dto.AgentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents [post]
func (c *AgentController) Create(ctx *gin.Context) {
	var request dto.AgentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Tenant ID não encontrado", ""))
		return
	}

	a, err := agent.NewAgent(tenantID, request.Name)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Dados inválidos", err.Error()))
		return
	}

	applyAgentRequest(a, &request)

	if err := c.agentRepository.Create(ctx, a); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao criar agente", err.Error()))
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToAgentResponse(a))
}

// GetByID busca um agente pelo ID
// @Summary Busca um agente pelo ID
// @Description Busca um agente pelo seu ID
// @Tags agents
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Success 200 {object} dto.AgentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id} [get]
func (c *AgentController) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	a, err := c.agentRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Agente não encontrado", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar agente", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAgentResponse(a))
}

// List lista os agentes do tenant
// @Summary Lista os agentes
// @Description Lista os agentes do tenant
// @Tags agents
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Success 200 {array} dto.AgentResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents [get]
func (c *AgentController) List(ctx *gin.Context) {
	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Tenant ID não encontrado", ""))
		return
	}

	agents, err := c.agentRepository.FindByTenant(ctx, tenantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao listar agentes", err.Error()))
		return
	}

	response := make([]dto.AgentResponse, len(agents))
	for i, a := range agents {
		response[i] = dto.ToAgentResponse(a)
	}

	ctx.JSON(http.StatusOK, response)
}

// Update atualiza um agente
// @Summary Atualiza um agente
// @Description Atualiza a configuração de um agente existente
// @Tags agents
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Param agent body dto.AgentRequest true "Dados do agente"
// @Success 200 {object} dto.AgentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id} [put]
func (c *AgentController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	existing, err := c.agentRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Agente não encontrado", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar agente", err.Error()))
		return
	}

	var request dto.AgentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	existing.Name = request.Name
	applyAgentRequest(existing, &request)
	existing.UpdatedAt = time.Now()

	if err := c.agentRepository.Update(ctx, existing); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao atualizar agente", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAgentResponse(existing))
}

// ConnectGoogle vincula a credencial Google do agente
// @Summary Vincula credencial Google
// @Description Guarda o refresh token do Google Calendar obtido no fluxo OAuth
// @Tags agents
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Param credential body dto.GoogleCredentialRequest true "Refresh token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id}/google [put]
func (c *AgentController) ConnectGoogle(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	var request dto.GoogleCredentialRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	cred := agent.GoogleCredential{RefreshToken: request.RefreshToken}
	if err := c.agentRepository.UpdateGoogleCredential(ctx, id, cred); err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Agente não encontrado", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao salvar credencial", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Credencial Google vinculada com sucesso", nil))
}

// Delete remove um agente
// @Summary Remove um agente
// @Description Remove um agente do sistema
// @Tags agents
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id} [delete]
func (c *AgentController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	if err := c.agentRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Agente não encontrado", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao remover agente", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Agente removido com sucesso", nil))
}

// applyAgentRequest copia a configuração do DTO para a entidade
func applyAgentRequest(a *agent.Agent, request *dto.AgentRequest) {
	a.Persona = request.Persona
	a.CommunicationGuide = request.CommunicationGuide
	a.GoalGuide = request.GoalGuide
	if request.Model != "" {
		a.Model = request.Model
	}
	a.TimezoneLabel = request.TimezoneLabel
	a.VoiceEnabled = request.VoiceEnabled
	a.VoiceID = request.VoiceID
	a.SplitResponses = request.SplitResponses
	if request.ResponseDelimiter != "" {
		a.ResponseDelimiter = request.ResponseDelimiter
	}
	if request.Availability != nil {
		a.Availability = request.Availability.ToAvailability()
	}
}
