package controller

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusvb/atendai/internal/adapter/api/dto"
	"github.com/matheusvb/atendai/internal/service"
	"github.com/matheusvb/atendai/pkg/tenant"
)

// MessageController gerencia o webhook de mensagens e o histórico de chats
type MessageController struct {
	chatService *service.ChatService
}

// NewMessageController cria uma nova instância de MessageController
func NewMessageController(chatService *service.ChatService) *MessageController {
	return &MessageController{
		chatService: chatService,
	}
}

// Inbound processa uma mensagem recebida do canal
// @Summary Processa uma mensagem recebida
// @Description Recebe uma mensagem do gateway de WhatsApp e retorna a resposta do agente
// @Tags messages
// @Accept json
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param message body dto.InboundMessageRequest true "Mensagem recebida"
// @Success 200 {object} dto.ReplyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /messages/inbound [post]
func (c *MessageController) Inbound(ctx *gin.Context) {
	var request dto.InboundMessageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}

	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Tenant ID não encontrado", ""))
		return
	}

	reply, err := c.chatService.HandleMessage(ctx, &service.InboundMessage{
		TenantID:     tenantID,
		AgentID:      request.AgentID,
		ContactPhone: request.ContactPhone,
		ContactName:  request.ContactName,
		Content:      request.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrChatBusy) {
			ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "Mensagem em processamento", "Aguarde a resposta da mensagem anterior"))
			return
		}
		if errors.Is(err, service.ErrAgentInactive) {
			ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(http.StatusUnprocessableEntity, "Agente inativo", "O agente informado não está ativo"))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao processar mensagem", err.Error()))
		return
	}

	if reply == nil {
		// Chat transferido para atendimento humano
		ctx.JSON(http.StatusOK, dto.ReplyResponse{})
		return
	}

	response := dto.ReplyResponse{ChatID: reply.ChatID, Content: reply.Content}
	if len(reply.Audio) > 0 {
		response.AudioBase64 = base64.StdEncoding.EncodeToString(reply.Audio)
	}

	ctx.JSON(http.StatusOK, response)
}

// History retorna o histórico de um chat
// @Summary Histórico de um chat
// @Description Retorna as mensagens de um chat em ordem cronológica inversa
// @Tags messages
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param chat_id path string true "ID do chat"
// @Param page query int false "Página"
// @Param page_size query int false "Itens por página"
// @Success 200 {object} dto.ChatHistoryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /chats/{chat_id}/messages [get]
func (c *MessageController) History(ctx *gin.Context) {
	chatID := ctx.Param("chat_id")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID do chat não fornecido", ""))
		return
	}

	pageStr := ctx.DefaultQuery("page", "1")
	pageSizeStr := ctx.DefaultQuery("page_size", "30")

	page, _ := strconv.Atoi(pageStr)
	pageSize, _ := strconv.Atoi(pageSizeStr)

	pagination := dto.GetPagination(page, pageSize)
	offset := (pagination.Page - 1) * pagination.PageSize

	messages, err := c.chatService.GetHistory(ctx, chatID, pagination.PageSize, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar histórico", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToChatHistoryResponse(chatID, messages, pagination.Page, pagination.PageSize))
}

// Transfer marca o chat como assumido por um atendente humano
// @Summary Transfere um chat para atendimento humano
// @Description Marca o chat como transferido; o agente para de responder
// @Tags messages
// @Produce json
// @Param tenant-id header string true "ID do tenant"
// @Param chat_id path string true "ID do chat"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /chats/{chat_id}/transfer [post]
func (c *MessageController) Transfer(ctx *gin.Context) {
	chatID := ctx.Param("chat_id")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "ID do chat não fornecido", ""))
		return
	}

	if err := c.chatService.TransferToHuman(ctx, chatID); err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao transferir chat", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Chat transferido para atendimento humano", nil))
}
