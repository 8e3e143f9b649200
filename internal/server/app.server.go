// Package server wires the app core together: remote store, session cache,
// auth provider, reconciler, community stores and the HTTP/WS surface.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/config"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/deeplink"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/handler"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/provider"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/repository"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/retry"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/router"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/routing"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/service/imagehost"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/session"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/verify"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/ws"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/cache"
)

// App holds everything that needs an ordered shutdown.
type App struct {
	HTTP       *http.Server
	Reconciler *usecase.AuthReconciler
	Hub        *ws.Hub

	db  *pgxpool.Pool
	rdb *redis.Client

	cancelListeners context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	// --- Remote Postgres ---
	db, err := pgxpool.New(ctx, cfg.Supabase.DBConnString)
	if err != nil {
		return nil, err
	}

	// --- Redis (session cache + content pub/sub) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Auth provider + session store ---
	authClient := provider.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, logger)
	sessionCache := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	sessions := session.NewStore(authClient, sessionCache, logger)

	// --- Repositories ---
	profiles := repository.NewProfileRepository(db)
	registry := repository.NewRegistryRepository(db)
	events := repository.NewEventRepository(db)
	jobs := repository.NewJobRepository(db)
	donors := repository.NewBloodDonorRepository(db)
	donations := repository.NewDonationRepository(db)
	matrimonial := repository.NewMatrimonialRepository(db)
	postHolders := repository.NewPostHolderRepository(db)

	// --- Phone verification (soft-failing, bounded retries) ---
	policy := retry.Policy{
		MaxAttempts: len(cfg.VerifyTimeouts),
		TimeoutFor:  func(attempt int) time.Duration { return cfg.VerifyTimeouts[attempt-1] },
		Delay:       cfg.VerifyDelay,
		NonBlocking: true,
	}
	verifier := verify.NewVerifier(registry, retry.NewRealClock(), policy, logger)

	// --- Deep-link capture, resolved once from the capability flag ---
	capture := deeplink.NewStrategy(cfg.OAuth.ProviderAssistedCallback, authClient, sessions, logger)

	reconciler := usecase.NewAuthReconciler(sessions, profiles, verifier, capture, logger)
	reconciler.Start(ctx)

	// --- Push channel ---
	hub := ws.NewHub(logger)
	go hub.Run()

	listenCtx, cancelListeners := context.WithCancel(context.Background())
	go ws.ListenContentEvents(listenCtx, rdb, hub, logger)

	// State changes stream straight to connected shells.
	reconciler.Subscribe(func(state domain.AuthorizationState) {
		hub.Broadcast(ws.Message{Type: ws.MsgTypeAuthState, Data: map[string]interface{}{
			"route":   routing.Route(state),
			"loading": state.Loading,
		}})
	})

	publisher := ws.NewContentPublisher(rdb, logger)
	community := usecase.NewCommunityUsecase(
		events, jobs, donors, donations, matrimonial, postHolders,
		profiles, reconciler, publisher, logger,
	)

	images := imagehost.NewService(cfg.ImageHost.UploadURL, cfg.ImageHost.UploadPreset, logger)

	// --- Handlers & routes ---
	authHandler := handler.NewAuthHandler(
		reconciler, authClient, sessions,
		authClient.AuthorizeURL("google", cfg.RedirectURL()),
		cfg.OAuth.GoogleClientID,
		logger,
	)
	communityHandler := handler.NewCommunityHandler(community, logger)
	uploadHandler := handler.NewUploadHandler(images, reconciler, logger)
	wsHandler := handler.NewWSHandler(hub, reconciler, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, communityHandler, uploadHandler, wsHandler)

	return &App{
		HTTP:            &http.Server{Addr: cfg.HTTPAddr, Handler: r},
		Reconciler:      reconciler,
		Hub:             hub,
		db:              db,
		rdb:             rdb,
		cancelListeners: cancelListeners,
	}, nil
}

// Shutdown stops the HTTP surface first, then the push and data layers.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.HTTP.Shutdown(ctx)
	a.cancelListeners()
	a.Hub.Stop()
	a.Reconciler.Close()
	a.db.Close()
	_ = a.rdb.Close()
	return err
}
