package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
	"github.com/aayush4jha/kirayawale-beta-version/internal/config"
	"github.com/aayush4jha/kirayawale-beta-version/internal/events"
	"github.com/aayush4jha/kirayawale-beta-version/internal/handler"
	"github.com/aayush4jha/kirayawale-beta-version/internal/mongo"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("config", zap.Error(err))
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	mc, err := mongo.NewMongoClient(ctx, cfg.MongoURI, log)
	if err != nil {
		return err
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	mdb := mc.Database(cfg.MongoDB)

	listingRepo := repository.NewListingRepository(db)
	userRepo := repository.NewUserRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	photoRepo := repository.NewPhotoRepository(mc, cfg.MongoDB)
	cartStorage := repository.NewCartStorage(mdb, cfg.StorageTimeout, log)

	changes := events.NewBus[events.ListingChanged]()
	session := auth.NewSession(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	listings := service.NewListingService(listingRepo, userRepo, changes, cfg.ListingCacheTTL, log.Named("listings"))
	ratings := service.NewRatingService(ratingRepo, listingRepo)
	users := service.NewUserService(userRepo, listingRepo)
	carts := service.NewCartService(listingRepo, func(id string) cart.Storage {
		return cartStorage.ForSession(id)
	}, cfg.CartKey, log.Named("cart"))
	go carts.RunJanitor(ctx, cfg.CartIdle/2, cfg.CartIdle)

	// a signed-out user's cart is reloaded from storage on next sign-in
	session.Subscribe(func(e auth.PrincipalEvent) {
		if !e.SignedIn {
			carts.Forget("user:" + e.Principal.UserID)
		}
	})

	secure := cfg.GinMode == gin.ReleaseMode
	authHandler := &handler.AuthHandler{Sessions: session, SecureCookie: secure, Log: log.Named("auth")}
	if cfg.Google.Enabled() {
		authHandler.Google = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := handler.NewRouter(log, session, handler.Handlers{
		Health: &handler.HealthHandler{Checks: map[string]handler.HealthCheck{
			"postgres": db.PingContext,
			"mongo":    func(ctx context.Context) error { return mc.Ping(ctx, nil) },
		}},
		Auth:     authHandler,
		Listings: &handler.ListingHandler{Listings: listings, ContactPhone: cfg.ContactPhone},
		Photos:   &handler.PhotoHandler{Repo: photoRepo, Listings: listings},
		Ratings:  handler.NewRatingHandler(ratings),
		Users:    &handler.UserHandler{Users: users},
		Cart:     &handler.CartHandler{Carts: carts, ContactPhone: cfg.ContactPhone, SecureCookie: secure},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listing service running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
