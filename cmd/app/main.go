package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeguesser/internal/cache"
	"timeguesser/internal/chain"
	"timeguesser/internal/config"
	"timeguesser/internal/db"
	httpServer "timeguesser/internal/http"
	"timeguesser/internal/http/handlers"
	"timeguesser/internal/http/middleware"
	"timeguesser/internal/logger"
	"timeguesser/internal/repository"
	"timeguesser/internal/retry"
	"timeguesser/internal/scheduler"
	"timeguesser/internal/service"
	"timeguesser/internal/ws"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("running without database", "error", err)
	} else {
		defer pool.Close()
	}

	rdb := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	client := dialChain(ctx, cfg)
	if client != nil {
		defer client.Close()
	}

	var claimSigner service.ClaimSigner
	if cfg.ValidatorPrivateKey != "" {
		s, err := chain.NewSigner(cfg.ValidatorPrivateKey)
		if err != nil {
			logger.Error("validator key rejected, /sign-score disabled", "error", err)
		} else {
			claimSigner = s
			logger.Info("validator loaded", "address", s.Address().Hex())
		}
	} else {
		logger.Warn("VALIDATOR_PRIVATE_KEY not set, /sign-score disabled")
	}
	if claimSigner != nil && client != nil {
		go checkValidator(ctx, client, claimSigner)
	}

	hub := ws.NewHub()
	defer hub.Close()

	h, healthChecks := buildHandler(cfg, pool, rdb, client, claimSigner, hub)

	var adminTokens middleware.TokenParser
	if t := service.NewAdminTokens(cfg.AdminJWTSecret, time.Hour); t != nil {
		adminTokens = t
	}

	sched, err := scheduler.New(h.Reconciler, cfg.ReconcileInterval, 2*time.Minute)
	if err != nil {
		logger.Fatal("create scheduler", "error", err)
	}
	if pool != nil && client != nil {
		sched.Start()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the mini app frontend
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: h,
		Health:  handlers.NewHealthHandler(cfg.AppVersion, healthChecks),
		Limiter: middleware.NewRateLimiter(rdb),
		Limits: httpServer.Limits{
			API:        cfg.APIRateLimit,
			APIWindow:  cfg.APIRateWindow,
			Sign:       cfg.SignRateLimit,
			SignWindow: cfg.SignRateWindow,
		},
		AdminTokens:   adminTokens,
		Hub:           hub,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := sched.Stop(); err != nil {
		logger.Warn("scheduler shutdown", "error", err)
	}

	logger.Info("server exited")
}

func dialChain(ctx context.Context, cfg *config.Config) *chain.Client {
	var contract common.Address
	if cfg.ContractAddress != "" {
		addr, err := chain.ParseAddress(cfg.ContractAddress)
		if err != nil {
			logger.Error("SCORE_CONTRACT_ADDRESS is not an address, contract features disabled", "error", err)
			cfg.ContractAddress = ""
		} else {
			contract = addr
		}
	}

	client, err := chain.Dial(ctx, cfg.RPCURL, contract)
	if err != nil {
		logger.Error("rpc unavailable, score verification disabled", "url", cfg.RPCURL, "error", err)
		return nil
	}

	idCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if id, err := client.ChainID(idCtx); err == nil && id != cfg.ChainID {
		logger.Warn("rpc chain id differs from CHAIN_ID", "rpc", id, "configured", cfg.ChainID)
	}
	return client
}

// checkValidator warns when the loaded key is not the contract's validator;
// mints signed by it would revert.
func checkValidator(ctx context.Context, client *chain.Client, signer service.ClaimSigner) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	onChain, err := client.ValidatorAddress(ctx)
	if err != nil {
		logger.Warn("could not read contract validator", "error", err)
		return
	}
	if onChain != signer.Address() {
		logger.Warn("validator key does not match contract validator",
			"contract", onChain.Hex(), "loaded", signer.Address().Hex())
	}
}

func buildHandler(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, client *chain.Client, signer service.ClaimSigner, hub *ws.Hub) (*handlers.Handler, map[string]handlers.Check) {
	checks := map[string]handlers.Check{}

	var (
		receipts service.ReceiptSource
		contract handlers.ContractReader
		stores   *service.Stores
		lbSource service.LeaderboardSource
		photos   service.PhotoSource
		mints    *repository.MintRepository
	)

	if client != nil {
		receipts = client
		checks["rpc"] = client.Ping
		if cfg.ContractAddress != "" {
			contract = client
		}
	}

	if pool != nil {
		mints = repository.NewMintRepository(pool)
		stores = &service.Stores{
			Users:  repository.NewUserRepository(pool),
			Games:  repository.NewGameRepository(pool),
			Rounds: repository.NewRoundRepository(pool),
			Mints:  mints,
		}
		lbSource = repository.NewLeaderboardRepository(pool)
		photos = repository.NewPhotoRepository(pool)
		checks["database"] = pool.Ping
	}

	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	leaderboard := service.NewLeaderboardService(lbSource, cache.New(rdb, "lb:"), cfg.LeaderboardCacheTTL)

	verifier := service.NewMintVerifier(service.VerifierConfig{
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
		Retry: retry.Config{
			MaxAttempts:  cfg.ReceiptMaxAttempts,
			InitialDelay: cfg.ReceiptInitialDelay,
			MaxDelay:     cfg.ReceiptMaxDelay,
			Multiplier:   2,
		},
		TrustOnMissingReceipt: cfg.ReceiptTrustOnMissing,
	}, receipts, stores, leaderboard, hub)

	h := &handlers.Handler{
		Signer:      service.NewScoreSigner(signer),
		Verifier:    verifier,
		Leaderboard: leaderboard,
		Photos:      service.NewPhotoService(photos),
		Contract:    contract,
	}

	var ledger service.MintLedger
	if mints != nil {
		h.Mints = mints
		ledger = mints
	}
	h.Reconciler = service.NewReconciler(receipts, ledger, cfg.ContractAddress, cfg.ReconcileBatchSize, leaderboard)

	return h, checks
}
