package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/moviehub/ticketing/internal/config"
	"github.com/moviehub/ticketing/internal/database"
	"github.com/moviehub/ticketing/internal/handler"
	"github.com/moviehub/ticketing/internal/middleware"
	"github.com/moviehub/ticketing/internal/queue"
	"github.com/moviehub/ticketing/internal/repository"
	"github.com/moviehub/ticketing/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment
	// directly and have no file.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: without it the limiter is a pass-through and
	// token verification skips the revocation check.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and token revocation disabled")
	}

	users := repository.NewUserRepo(db)
	graph := repository.NewTicketGraphRepo(db)
	movies := repository.NewMovieRepo(db)
	rev := repository.NewRevocationStore(rdb)

	auth := handler.NewAuthHandler(cfg, users, graph, rev)
	moviesH := handler.NewMoviesHandler(cfg, movies)
	history := handler.NewHistoryHandler(graph, movies)

	e := echo.New()
	rl := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, rev, rl)
	router.RegisterMovies(e, moviesH, history, cfg.JWTSecret, rev)

	// Reward accruals arrive over the broker; the consumer owns its
	// reconnect loop.
	go func() {
		if err := queue.StartRewardConsumer(users); err != nil {
			log.Printf("reward consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
