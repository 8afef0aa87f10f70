package keypadimport

import (
	"log/slog"

	httpadapter "quorum/contexts/assembly-voting/keypad-import/adapters/http"
	"quorum/contexts/assembly-voting/keypad-import/adapters/memory"
	"quorum/contexts/assembly-voting/keypad-import/application"
	"quorum/contexts/assembly-voting/keypad-import/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Reader ports.DirectoryReader
	Writer ports.DirectoryWriter
	IDGen  ports.IDGenerator
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Reader: deps.Reader,
		Writer: deps.Writer,
		IDGen:  deps.IDGen,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Imports: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Reader: store,
		Writer: store,
		IDGen:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
