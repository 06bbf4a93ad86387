// @title           Valoración Aduanera API
// @version         1.0
// @description     Cálculo y gestión del valor en aduana (RG 2010/2006): cuestionario regulatorio,
// @description     ajustes, penalidad por certificado de origen, reportes PDF y declaración XML.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/valoracion-api/docs"
	appanalytics "github.com/jhoicas/valoracion-api/internal/application/analytics"
	"github.com/jhoicas/valoracion-api/internal/application/auth"
	appclient "github.com/jhoicas/valoracion-api/internal/application/client"
	"github.com/jhoicas/valoracion-api/internal/application/ports"
	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/application/usecase"
	"github.com/jhoicas/valoracion-api/internal/application/valuations"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	infraai "github.com/jhoicas/valoracion-api/internal/infrastructure/ai"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/valoracion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/xmldoc"
	httpRouter "github.com/jhoicas/valoracion-api/internal/interfaces/http"
	"github.com/jhoicas/valoracion-api/pkg/config"
	"github.com/jhoicas/valoracion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		version, err := postgres.RunMigrations(cfg.DB.ConnectionString())
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", version).Msg("esquema al día")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	valRepo := postgres.NewValuationRepository(pool)
	eventRepo := postgres.NewValuationEventRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Borradores en curso: Redis en despliegues con más de una instancia.
	var drafts repository.DraftRepository
	switch cfg.Drafts.Backend {
	case config.DraftBackendRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		drafts = redisstore.NewDraftRepository(rdb, cfg.Drafts.TTL())
	default:
		drafts = memory.NewDraftRepository(cfg.Drafts.TTL())
	}
	log.Info().Str("backend", cfg.Drafts.Backend).Dur("ttl", cfg.Drafts.TTL()).Msg("borradores")

	// IA opcional: sin API key los endpoints responden 503.
	var llm ports.LLMService
	switch cfg.AI.Provider {
	case config.AIProviderAnthropic:
		if svc, err := infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel); err != nil {
			log.Warn().Err(err).Msg("IA deshabilitada")
		} else {
			llm = svc
		}
	default:
		if svc, err := infraai.NewGeminiService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel); err != nil {
			log.Warn().Err(err).Msg("IA deshabilitada")
		} else {
			llm = svc
		}
	}
	if llm != nil {
		log.Info().Str("provider", cfg.AI.Provider).Msg("IA habilitada")
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	clientUC := appclient.NewClientUseCase(clientRepo)
	valuationUC := valuations.NewValuationUseCase(valRepo, eventRepo, clientRepo, drafts, txRunner, log)
	reportUC := report.NewReportUseCase(valRepo, userRepo, clientRepo,
		infrapdf.NewMarotoPDFGenerator(), xmldoc.NewBuilder())
	// Firma opcional de la declaración XML con el certificado del profesional.
	if cfg.Signing.Enabled() {
		var signer *xmldoc.Signer
		var err error
		if cfg.Signing.P12Path != "" {
			signer, err = xmldoc.LoadP12(cfg.Signing.P12Path, cfg.Signing.P12Password)
		} else {
			signer, err = xmldoc.LoadPEM(cfg.Signing.CertPath, cfg.Signing.KeyPath)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("certificado de firma")
		}
		reportUC.WithSigner(signer)
		log.Info().Str("subject", signer.Subject()).Msg("firma XML habilitada")
	}
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)
	aiUC := usecase.NewAIUseCase(llm, drafts, cfg.AI.Timeout(), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // extracción con IA y PDFs
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 << 20,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Valoración Aduanera API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name, "ai": aiUC.Enabled()}
		if err := pool.Ping(c.Context()); err != nil {
			status["status"] = "degraded"
			status["db"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ClientUC:    clientUC,
		ValuationUC: valuationUC,
		ReportUC:    reportUC,
		DashboardUC: dashboardUC,
		AIUC:        aiUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
