package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/config"
	"github.com/iliyamo/forge-dashboard/internal/database"
	"github.com/iliyamo/forge-dashboard/internal/handler"
	"github.com/iliyamo/forge-dashboard/internal/queue"
	"github.com/iliyamo/forge-dashboard/internal/ratelimit"
	"github.com/iliyamo/forge-dashboard/internal/repository"
	"github.com/iliyamo/forge-dashboard/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	codec, err := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	policy := auth.PasswordPolicy{MinLength: cfg.PasswordMinLength}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tools := repository.NewToolRepo(db)
	requests := repository.NewMaintenanceRepo(db)

	svc := auth.NewService(users, hasher, codec, policy)

	// Prefer the shared Redis store so limits hold across replicas;
	// fall back to per-process counters when Redis is unreachable.
	var guard *ratelimit.Guard
	if rlCfg.Enabled {
		guardCfg := ratelimit.Config{
			Limit:         rlCfg.Limit,
			Window:        rlCfg.Window,
			EscalateAfter: rlCfg.EscalateAfter,
			BlockFor:      rlCfg.BlockFor,
		}
		if rdb := config.NewRedisClient(); rdb != nil {
			guard = ratelimit.NewGuard(guardCfg, ratelimit.NewRedisStore(rdb, rlCfg.Prefix))
			log.Printf("rate limit: redis store (%d req / %s)", rlCfg.Limit, rlCfg.Window)
		} else {
			guard = ratelimit.NewGuard(guardCfg, ratelimit.NewMemoryStore())
			log.Printf("rate limit: in-memory store (%d req / %s)", rlCfg.Limit, rlCfg.Window)
		}
	}

	go func() {
		if err := queue.StartMaintenanceConsumer(); err != nil {
			log.Printf("maintenance consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(svc, tools),
		Tools:       handler.NewToolHandler(tools),
		UserAdmin:   handler.NewUserAdminHandler(svc, users),
		Admin:       handler.NewAdminHandler(tools, roles),
		Maintenance: handler.NewMaintenanceHandler(requests, users),
	}, svc, guard)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
