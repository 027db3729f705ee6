package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/config"
	dispatchsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/dispatch"
	enforcesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/enforcement"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
	profilesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/profiles"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/handlers"
)

type Dependencies struct {
	IngestService      *ingestsvc.Service
	DispatchService    *dispatchsvc.Service
	EnforcementService *enforcesvc.Service
	ProfileService     *profilesvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	serverHandler := handlers.NewServerHandler(deps.IngestService)
	ingestHandler := handlers.NewIngestHandler(deps.IngestService)
	commandHandler := handlers.NewCommandHandler(deps.DispatchService, deps.IngestService)
	moderationHandler := handlers.NewModerationHandler(deps.EnforcementService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)

	serverAuthMW := ServerAuthMiddleware(deps.Config.Ingest.SharedSecret, deps.Logger)
	staffAuthMW := StaffAuthMiddleware(deps.Config.Staff.Token, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	// Game servers push state and poll for work. They never receive
	// connections; everything rides on these requests.
	r.Route("/ingest/servers/{serverID}", func(r chi.Router) {
		r.Use(serverAuthMW)
		r.Post("/chat", ingestHandler.PushChat)
		r.Post("/roster", ingestHandler.ReplaceRoster)
		r.Get("/poll", commandHandler.Poll)
		r.Post("/commands/{commandID}/ack", commandHandler.Ack)
	})

	// Staff dashboard surface.
	r.Route("/api", func(r chi.Router) {
		r.Use(staffAuthMW)
		r.Get("/servers", serverHandler.List)
		r.Get("/servers/{serverID}", serverHandler.Get)
		r.Post("/servers/{serverID}/flag", serverHandler.Flag)
		r.Get("/servers/{serverID}/chat", ingestHandler.GetChat)
		r.Get("/servers/{serverID}/roster", ingestHandler.GetRoster)
		r.Get("/servers/{serverID}/audit", ingestHandler.GetAudit)
		r.Post("/servers/{serverID}/notify", ingestHandler.Notify)
		r.Post("/servers/{serverID}/commands", commandHandler.Enqueue)
		r.Get("/servers/{serverID}/commands", commandHandler.History)
		r.Post("/moderation/ban", moderationHandler.Ban)
		r.Post("/moderation/unban", moderationHandler.Unban)
		r.Get("/moderation/log", moderationHandler.Log)
		r.Get("/profiles/{playerID}", profileHandler.Get)
	})
}
