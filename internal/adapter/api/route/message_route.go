package route

import (
	"github.com/gin-gonic/gin"

	"github.com/matheusvb/atendai/internal/adapter/api/controller"
	"github.com/matheusvb/atendai/pkg/auth"
)

// SetupMessageRoutes configura as rotas de mensagens e chats
func SetupMessageRoutes(router *gin.RouterGroup, messageController *controller.MessageController) {
	// Webhook de entrada do gateway de WhatsApp (autenticado pelo cabeçalho tenant-id)
	router.POST("/messages/inbound", messageController.Inbound)

	chatRouter := router.Group("/chats")
	{
		chatRouter.Use(auth.JWTAuthMiddleware())

		chatRouter.GET("/:chat_id/messages", messageController.History)
		chatRouter.POST("/:chat_id/transfer", messageController.Transfer)
	}
}
