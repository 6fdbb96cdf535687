package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusvb/atendai/internal/adapter/api/dto"
	"github.com/matheusvb/atendai/internal/adapter/repository"
	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/tenant"
)

// IntentionController gerencia as requisições relacionadas às intenções
type IntentionController struct {
	intentionRepository intention.Repository
	agentRepository     agent.Repository
}

// NewIntentionController cria uma nova instância de IntentionController
func NewIntentionController(intentionRepository intention.Repository, agentRepository agent.Repository) *IntentionController {
	return &IntentionController{
		intentionRepository: intentionRepository,
		agentRepository:     agentRepository,
	}
}

// Create cria uma nova intenção para um agente
// @Summary Cria uma nova intenção
// @Description Cria uma intenção configurável para um agente
// @Tags intentions
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Param intention body dto.IntentionRequest true "Dados da intenção"
// @Success 201 {object} dto.IntentionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id}/intentions [post]
func (c *IntentionController) Create(ctx *gin.Context) {
	agentID := ctx.Param("id")
	if agentID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID do agente não fornecido", ""))
		return
	}

	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Tenant ID não encontrado", ""))
		return
	}

	// O agente precisa existir e pertencer ao tenant
	a, err := c.agentRepository.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Agente não encontrado", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar agente", err.Error()))
		return
	}
	if a.TenantID != tenantID {
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "Acesso negado", "O agente não pertence a este tenant"))
		return
	}

	var request dto.IntentionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	i := request.ToIntention(tenantID, agentID)
	if err := i.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Configuração inválida", err.Error()))
		return
	}

	if err := c.intentionRepository.Create(ctx, i); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao criar intenção", err.Error()))
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToIntentionResponse(i))
}

// List lista as intenções de um agente
// @Summary Lista as intenções de um agente
// @Description Lista as intenções configuradas para um agente
// @Tags intentions
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID do agente"
// @Success 200 {array} dto.IntentionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{id}/intentions [get]
func (c *IntentionController) List(ctx *gin.Context) {
	agentID := ctx.Param("id")
	if agentID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID do agente não fornecido", ""))
		return
	}

	intentions, err := c.intentionRepository.FindByAgent(ctx, agentID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao listar intenções", err.Error()))
		return
	}

	response := make([]dto.IntentionResponse, len(intentions))
	for i, intn := range intentions {
		response[i] = dto.ToIntentionResponse(intn)
	}

	ctx.JSON(http.StatusOK, response)
}

// GetByID busca uma intenção pelo ID
// @Summary Busca uma intenção pelo ID
// @Description Busca uma intenção pelo seu ID
// @Tags intentions
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID da intenção"
// @Success 200 {object} dto.IntentionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /intentions/{id} [get]
func (c *IntentionController) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	i, err := c.intentionRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIntentionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Intenção não encontrada", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar intenção", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToIntentionResponse(i))
}

// Update atualiza uma intenção
// @Summary Atualiza uma intenção
// @Description Atualiza a configuração de uma intenção existente
// @Tags intentions
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID da intenção"
// @Param intention body dto.IntentionRequest true "Dados da intenção"
// @Success 200 {object} dto.IntentionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /intentions/{id} [put]
func (c *IntentionController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	existing, err := c.intentionRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIntentionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Intenção não encontrada", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar intenção", err.Error()))
		return
	}

	var request dto.IntentionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	updated := request.ToIntention(existing.TenantID, existing.AgentID)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := updated.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Configuração inválida", err.Error()))
		return
	}

	if err := c.intentionRepository.Update(ctx, updated); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao atualizar intenção", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToIntentionResponse(updated))
}

// Delete remove uma intenção
// @Summary Remove uma intenção
// @Description Remove uma intenção do sistema
// @Tags intentions
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param id path string true "ID da intenção"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /intentions/{id} [delete]
func (c *IntentionController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID não fornecido", ""))
		return
	}

	if err := c.intentionRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrIntentionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Intenção não encontrada", ""))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao remover intenção", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Intenção removida com sucesso", nil))
}
