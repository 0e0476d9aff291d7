package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/server/auth"
	"github.com/vodhouse/vodhouse/server/handler/progress"
	"github.com/vodhouse/vodhouse/server/handler/session"
	"github.com/vodhouse/vodhouse/server/handler/video"
	"github.com/vodhouse/vodhouse/server/middleware"
	"github.com/vodhouse/vodhouse/server/state"
	"github.com/vodhouse/vodhouse/storage/catalog"
	catalogfactory "github.com/vodhouse/vodhouse/storage/catalog/factory"
	"github.com/vodhouse/vodhouse/storage/media"
	mediafactory "github.com/vodhouse/vodhouse/storage/media/factory"
	"github.com/vodhouse/vodhouse/storage/media/filesystem"
)

func initializeCatalogStore(cfg *config.Catalog) (catalog.Store, error) {
	return catalogfactory.Create(cfg)
}

func initializeMediaStore(cfg *config.Media) (media.Store, error) {
	return mediafactory.Create(cfg)
}

// NewHandler wires the HTTP surface over the provided state.
func NewHandler(st *state.State) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /login", session.HandleLogin(st))

	mux.Handle("GET /videos", video.HandleList(st))
	mux.Handle("GET /videos/{id}", video.HandleGet(st))

	adminGate := func(next http.Handler) http.Handler {
		return middleware.RequireAdmin(&st.Cfg.Auth, st.Authz, next)
	}
	mux.Handle("POST /videos", adminGate(video.HandleCreate(st)))
	mux.Handle("DELETE /videos/{id}", adminGate(video.HandleDelete(st)))

	mux.Handle("GET /progress/{viewer}", progress.HandleForViewer(st))
	mux.Handle("POST /progress", progress.HandleSave(st))

	// The filesystem media store needs its upload root served back out.
	if fs, ok := st.Media.(*filesystem.StoreImpl); ok {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(fs.BasePath()))))
	}

	return middleware.CORS(middleware.Logging(mux))
}

func StartServer(cfg *config.Config) error {
	catalogStore, err := initializeCatalogStore(&cfg.Catalog)
	if err != nil {
		return fmt.Errorf("initialize catalog store: %w", err)
	}

	mediaStore, err := initializeMediaStore(&cfg.Media)
	if err != nil {
		return fmt.Errorf("initialize media store: %w", err)
	}

	st := &state.State{
		Cfg:     cfg,
		Catalog: catalogStore,
		Media:   mediaStore,
		Authn:   auth.MockAuthenticator{},
		Authz:   auth.TokenAuthorizer{AdminToken: cfg.Auth.AdminToken},
	}

	bindAddress := fmt.Sprintf("%v:%v", cfg.Server.Address, cfg.Server.Port)
	log.Printf("serving http requests on %q", bindAddress)
	return http.ListenAndServe(bindAddress, NewHandler(st))
}
