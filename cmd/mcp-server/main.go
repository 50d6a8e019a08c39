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

	"github.com/xiaot623/mcp-bridge/internal/business"
	"github.com/xiaot623/mcp-bridge/internal/config"
	"github.com/xiaot623/mcp-bridge/internal/dispatcher"
	"github.com/xiaot623/mcp-bridge/internal/policy"
	"github.com/xiaot623/mcp-bridge/internal/store"
	"github.com/xiaot623/mcp-bridge/internal/transport/http/mcpapi"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting MCP bridge...")
	log.Printf("HTTP Port: %d", cfg.MCPPort)
	log.Printf("Business server URL: %s", cfg.BusinessURL)
	log.Printf("Store DSN: %s", cfg.StoreDSN)

	st, err := store.NewSQLiteStore(cfg.StoreDSN)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	businessClient := business.NewClient(cfg.BusinessURL, cfg.BusinessTimeout)

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	catalog := dispatcher.BuildCatalog(businessClient)
	d := dispatcher.New(catalog, policyEngine, st)

	h := mcpapi.NewHandler(d, st)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.MCPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start MCP bridge: %v", err)
		}
	}()

	log.Printf("MCP bridge started on port %d with %d tools", cfg.MCPPort, catalog.Len())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down MCP bridge...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown MCP bridge gracefully: %v", err)
	}

	log.Println("MCP bridge stopped")
}
