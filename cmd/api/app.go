package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusvb/atendai/internal/adapter/api/controller"
	"github.com/matheusvb/atendai/internal/adapter/api/route"
	"github.com/matheusvb/atendai/internal/adapter/repository"
	"github.com/matheusvb/atendai/internal/infrastructure/database"
	"github.com/matheusvb/atendai/internal/service"
	"github.com/matheusvb/atendai/internal/transport"
	"github.com/matheusvb/atendai/pkg/audio"
	"github.com/matheusvb/atendai/pkg/engine"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
	"github.com/matheusvb/atendai/pkg/memory"
	"github.com/matheusvb/atendai/pkg/oauth"
	"github.com/matheusvb/atendai/pkg/schedule"
	"github.com/matheusvb/atendai/pkg/tenant"
)

const pendingStateTTL = 30 * time.Minute

// App representa a aplicação e suas dependências
type App struct {
	router      *gin.Engine
	db          *pgxpool.Pool
	store       memory.Store
	nats        *transport.NATSTransport
	chatService *service.ChatService
	logger      logger.Logger
}

// NewApp cria uma nova instância do aplicativo
func NewApp() (*App, error) {
	log := logger.NewLogger()

	// Configurar banco de dados
	db, err := database.NewPostgresDB()
	if err != nil {
		return nil, err
	}

	// Criar repositórios
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	intentionRepo := repository.NewIntentionRepository(db)

	// Estado de conversa e lock de chat no Redis
	redisURL := getEnv("REDIS_URL", "redis://localhost:6379/0")
	store, err := memory.NewRedisStore(redisURL, pendingStateTTL)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	// Cliente de LLM
	llmClient := newLLMClient(log)

	// Motor de intenções
	tokenProvider := oauth.NewGoogleTokenProvider(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		agentRepo,
		log,
	)
	detector := engine.NewDetector(llmClient, log)
	executor := engine.NewExecutor(&http.Client{Timeout: 30 * time.Second}, tokenProvider, schedule.NewValidator(), log)
	composer := engine.NewComposer(llmClient, log)
	eng := engine.New(detector, executor, composer, log)

	// Síntese de voz (opcional)
	var synthesizer audio.Synthesizer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		synthesizer = audio.NewOpenAISynthesizer(apiKey, log)
	}

	// Serviço de atendimento
	chatService := service.NewChatService(agentRepo, chatRepo, intentionRepo, eng, llmClient, store, synthesizer, log)
	chatService.RegisterLocalHandler("transfer_to_human", func(ctx context.Context, chatID string, fields map[string]interface{}) (interface{}, error) {
		if err := chatService.TransferToHuman(ctx, chatID); err != nil {
			return nil, err
		}
		return map[string]interface{}{"transferred": true}, nil
	})

	// Criar validador de tenant
	tenantValidator := repository.NewTenantValidator(tenantRepo)

	// Criar controllers
	authController := controller.NewAuthController(userRepo)
	tenantController := controller.NewTenantController(tenantRepo)
	userController := controller.NewUserController(userRepo, tenantRepo)
	agentController := controller.NewAgentController(agentRepo)
	intentionController := controller.NewIntentionController(intentionRepo, agentRepo)
	messageController := controller.NewMessageController(chatService)

	// Configurar router
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "tenant-id")
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Rotas públicas (sem validação de tenant)
	route.SetupTenantRoutes(api, tenantController)

	// Rotas protegidas por tenant
	api.Use(tenant.TenantMiddleware(tenantValidator))
	route.SetupAuthRoutes(api, authController)
	route.SetupSetupRoutes(api, userController)
	route.SetupUserRoutes(api, userController)
	route.SetupAgentRoutes(api, agentController, intentionController)
	route.SetupMessageRoutes(api, messageController)

	app := &App{
		router:      router,
		db:          db,
		store:       store,
		chatService: chatService,
		logger:      log,
	}

	// Transporte NATS (opcional)
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsTransport, err := transport.NewNATSTransport(natsURL, chatService, log)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar ao NATS: %w", err)
		}
		app.nats = natsTransport
	}

	return app, nil
}

// Start inicia o servidor HTTP e bloqueia até receber sinal de término
func (a *App) Start() error {
	if a.nats != nil {
		if err := a.nats.Start(); err != nil {
			return fmt.Errorf("erro ao iniciar transporte NATS: %w", err)
		}
	}

	port := getEnv("PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Servidor HTTP iniciado", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.Info("Encerrando servidor", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Erro no shutdown do servidor HTTP", "error", err)
	}

	a.Close()
	return nil
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			a.logger.Warn("Erro ao encerrar transporte NATS", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Erro ao encerrar conexão com o Redis", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// newLLMClient escolhe o provedor de LLM a partir do ambiente
func newLLMClient(log logger.Logger) llm.Client {
	if os.Getenv("LLM_PROVIDER") == "deepseek" {
		return llm.NewDeepseekClient(os.Getenv("DEEPSEEK_API_KEY"), log)
	}
	return llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), log)
}

// getEnv retorna o valor de uma variável de ambiente ou um valor padrão
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
