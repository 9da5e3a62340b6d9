package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/ragstore/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/ragstore/internal/api/middlewares"
	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, data *services.DataService, process *services.ProcessService, nlp *services.NLPService, users *services.UserService) *Server {
	baseHandler := handlers.NewBaseHandler(cfg)
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	dataHandler := handlers.NewDataHandler(data, process)
	nlpHandler := handlers.NewNLPHandler(nlp)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// public endpoints
	r.Post("/api/signup", authHandler.Signup)
	r.Post("/api/login", authHandler.Login)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/", baseHandler.Welcome)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))
			protected.Post("/data/upload/{project_id}", dataHandler.UploadData)
			protected.Post("/data/process/{project_id}", dataHandler.ProcessData)
			protected.Post("/nlp/index/push/{project_id}", nlpHandler.PushIndex)
			protected.Post("/nlp/generate", nlpHandler.Generate)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
