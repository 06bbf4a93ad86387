package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/valoracion-api/internal/application/analytics"
	"github.com/jhoicas/valoracion-api/internal/application/auth"
	appclient "github.com/jhoicas/valoracion-api/internal/application/client"
	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/application/usecase"
	"github.com/jhoicas/valoracion-api/internal/application/valuations"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ClientUC    *appclient.ClientUseCase
	ValuationUC *valuations.ValuationUseCase
	ReportUC    *report.ReportUseCase
	DashboardUC *appanalytics.DashboardUseCase
	AIUC        *usecase.AIUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	signers := RequireRole(entity.RoleAdmin, entity.RoleDespachante)

	// Usuarios (sólo admin)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	users.Put("/:id/role", authHandler.AssignRole)

	// Clientes
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/import", signers, clientHandler.Import)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.Get)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", signers, clientHandler.Delete)

	// Valoraciones: las rutas fijas van antes que /:id
	vals := protected.Group("/valuations")
	valHandler := NewValuationHandler(deps.ValuationUC)
	reportHandler := NewReportHandler(deps.ReportUC)
	vals.Get("/questions", valHandler.Questions)
	vals.Post("/calculate", valHandler.Calculate)
	vals.Post("/", valHandler.Create)
	vals.Get("/", valHandler.List)
	vals.Get("/:id", valHandler.Get)
	vals.Delete("/:id", valHandler.Delete)
	vals.Put("/:id/details", valHandler.UpdateDetails)
	vals.Put("/:id/answers/:qid", valHandler.SetAnswer)
	vals.Put("/:id/base-value", valHandler.SetBaseValue)
	vals.Put("/:id/origin-certificate", valHandler.SetOriginCertificate)
	vals.Get("/:id/preview", valHandler.Preview)
	vals.Post("/:id/finalize", valHandler.Finalize)
	vals.Post("/:id/reopen", valHandler.Reopen)
	vals.Get("/:id/history", valHandler.History)
	vals.Get("/:id/report", reportHandler.PDF)
	vals.Get("/:id/xml", reportHandler.XML)

	// Borrador en curso (uno por usuario)
	drafts := protected.Group("/drafts")
	drafts.Get("/", valHandler.LoadDraft)
	drafts.Put("/", valHandler.SaveDraft)
	drafts.Delete("/", valHandler.DiscardDraft)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// IA
	ai := protected.Group("/ai")
	aiHandler := NewAIHandler(deps.AIUC)
	ai.Post("/extract", aiHandler.Extract)
	ai.Post("/chat", aiHandler.Chat)
}
