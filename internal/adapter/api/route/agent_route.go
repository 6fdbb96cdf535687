package route

import (
	"github.com/gin-gonic/gin"

	"github.com/matheusvb/atendai/internal/adapter/api/controller"
	"github.com/matheusvb/atendai/pkg/auth"
)

// SetupAgentRoutes configura as rotas para o módulo de agentes
func SetupAgentRoutes(router *gin.RouterGroup, agentController *controller.AgentController, intentionController *controller.IntentionController) {
	agentRouter := router.Group("/agents")
	{
		agentRouter.Use(auth.JWTAuthMiddleware())

		// Operações CRUD básicas
		agentRouter.POST("", agentController.Create)
		agentRouter.GET("", agentController.List)
		agentRouter.GET("/:id", agentController.GetByID)
		agentRouter.PUT("/:id", agentController.Update)
		agentRouter.DELETE("/:id", agentController.Delete)

		// Credencial do Google Calendar
		agentRouter.PUT("/:id/google", agentController.ConnectGoogle)

		// Intenções do agente
		agentRouter.POST("/:id/intentions", intentionController.Create)
		agentRouter.GET("/:id/intentions", intentionController.List)
	}

	intentionRouter := router.Group("/intentions")
	{
		intentionRouter.Use(auth.JWTAuthMiddleware())

		intentionRouter.GET("/:id", intentionController.GetByID)
		intentionRouter.PUT("/:id", intentionController.Update)
		intentionRouter.DELETE("/:id", intentionController.Delete)
	}
}
