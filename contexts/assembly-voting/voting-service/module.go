package votingservice

import (
	"log/slog"

	httpadapter "quorum/contexts/assembly-voting/voting-service/adapters/http"
	"quorum/contexts/assembly-voting/voting-service/adapters/memory"
	"quorum/contexts/assembly-voting/voting-service/application/commands"
	"quorum/contexts/assembly-voting/voting-service/application/queries"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Coordinator *commands.Coordinator
	Store       *memory.Store
}

type Dependencies struct {
	Device    ports.DeviceLink
	Votes     ports.VoteRepository
	Directory ports.Directory
	Presence  ports.KeypadPresence
	Roster    ports.SpeakerRoster
	Journal   ports.ResultJournal
	Status    ports.StatusPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	coordinator := commands.NewCoordinator(commands.CoordinatorDeps{
		Device:    deps.Device,
		Votes:     deps.Votes,
		Directory: deps.Directory,
		Presence:  deps.Presence,
		Roster:    deps.Roster,
		Journal:   deps.Journal,
		Status:    deps.Status,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	})
	return Module{
		Handler: httpadapter.Handler{
			Sessions: coordinator,
			LiveView: queries.LiveViewUseCase{Votes: deps.Votes},
			Logger:   deps.Logger,
		},
		Coordinator: coordinator,
	}
}

// NewInMemoryModule wires the coordinator against the in-memory store for
// tests and local runs. The caller supplies the device link, usually a fake.
func NewInMemoryModule(device ports.DeviceLink, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	module := NewModule(Dependencies{
		Device:    device,
		Votes:     store,
		Directory: store,
		Presence:  store,
		Roster:    store,
		Clock:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
