package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusfeed/internal/config"
	"campusfeed/internal/db"
	"campusfeed/internal/router"
	"campusfeed/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	db.Init(cfg)

	// 初始化异步排名服务
	ranking := services.GetRankingService()
	ranking.Start()
	ranking.StartScheduledScoreUpdate()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Setup(cfg),
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("campusfeed server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		log.Fatalf("server error: %v", err)
	case sig := <-shutdown:
		log.Printf("%v: start shutdown...", sig)

		// 给未完成的请求留出时间
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("could not stop server gracefully: %v", err)
			_ = srv.Close()
		}
		ranking.Stop()
	}
}
