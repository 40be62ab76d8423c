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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algemiroteran/canvabot/internal/config"
	"github.com/algemiroteran/canvabot/internal/funnel"
	"github.com/algemiroteran/canvabot/internal/infra/classifier"
	"github.com/algemiroteran/canvabot/internal/infra/http/handlers"
	"github.com/algemiroteran/canvabot/internal/infra/http/middleware"
	"github.com/algemiroteran/canvabot/internal/infra/store"
	"github.com/algemiroteran/canvabot/internal/infra/wameow"
	"github.com/algemiroteran/canvabot/internal/infra/ws"
	"github.com/algemiroteran/canvabot/internal/session"
)

const greetedSweepInterval = 30 * time.Second

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// 1. Colaboradores
	customerStore := store.New(cfg.DBPath)
	intentClassifier := classifier.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.BaseURL)
	transport := wameow.NewTransport(cfg.SessionDBPath)

	// 2. Motor del embudo
	greeted := funnel.NewGreetedSet(funnel.GreetingWindow)
	engine := funnel.NewEngine(greeted)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go greeted.Run(sweepCtx, greetedSweepInterval)

	// 3. Controlador de sesión + canal en vivo
	hub := ws.NewHub()
	controller := session.NewController(transport, intentClassifier, customerStore, engine, hub)
	hub.OnStart = func() {
		go controller.Start(context.Background())
	}
	hub.OnStop = controller.Stop
	hub.SessionState = func() any {
		return controller.State()
	}

	// 4. Handlers
	clientsHandler := handlers.NewClientsHandler(customerStore)
	statusHandler := handlers.NewStatusHandler(customerStore, hub, controller)
	healthHandler := handlers.NewHealthHandler(customerStore, controller, cfg.OpenRouter.APIKey != "")

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/clients", clientsHandler.Handle)
	r.Post("/status", statusHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Get("/ws", hub.Handle)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.HTTPAddr(), Handler: r}

	go func() {
		log.Printf("🚀 Servidor corriendo en http://localhost%s", cfg.HTTPAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("👋 Apagando...")
	controller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Error en el shutdown HTTP: %v", err)
	}
}
