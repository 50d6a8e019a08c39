package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/mcp-bridge/internal/config"
	"github.com/xiaot623/mcp-bridge/internal/joke"
	"github.com/xiaot623/mcp-bridge/internal/registry"
	"github.com/xiaot623/mcp-bridge/internal/transport/http/businessapi"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting business server...")
	log.Printf("HTTP Port: %d", cfg.BusinessPort)
	log.Printf("Joke API URL: %s", cfg.JokeAPIURL)

	reg := registry.New()
	jokes := joke.NewClient(cfg.JokeAPIURL, cfg.JokeTimeout)

	h := businessapi.NewHandler(reg, jokes)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.BusinessPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start business server: %v", err)
		}
	}()

	log.Printf("Business server started on port %d", cfg.BusinessPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down business server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown business server gracefully: %v", err)
	}

	log.Println("Business server stopped")
}
