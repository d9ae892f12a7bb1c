package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

func main() {
	// best-effort: a missing .env is fine
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-bloglist-go")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := database.ConfigFromEnv()
	st, err := openStore(ctx, dbCfg, sugar)
	if err != nil {
		sugar.Fatalf("open storage: %v", err)
	}

	authCfg := auth.ConfigFromEnv()
	if authCfg.Secret == "" && dbCfg.Driver == database.DriverMemory {
		authCfg.Secret = utilities.NewRequestID()
		sugar.Warn("SECRET not set; using an ephemeral signing secret")
	}
	tokens, err := auth.NewTokenService(authCfg)
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	handler := router.RegisterRoutes(sugar, router.Deps{
		Store:  st,
		Tokens: tokens,
		Hasher: user.BcryptHasher{Cost: 10},
		Policy: blog.PolicyFromEnv(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3003"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("server running", "port", port, "storage", dbCfg.Driver)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := st.Close(doneCtx); err != nil {
		sugar.Warnf("storage close failed: %v", err)
	}

	sugar.Info("goodbye")
}
