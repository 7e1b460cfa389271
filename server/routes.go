package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/lab1702/solar-web/config"
	"github.com/rs/cors"
)

// NewCORS builds the CORS policy for the JSON API
func NewCORS(cfg config.FrontendConfig) *cors.Cors {
	logger := slog.With("component", "cors", "operation", "setup")

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		Debug:          cfg.CORSDebug,
	})

	logger.Info("CORS middleware configured",
		"allowed_origins", cfg.AllowedOrigins,
		"debug_mode", cfg.CORSDebug,
	)
	return c
}

// Routes wires the browser client, websocket, JSON API, health and metrics
func (s *Server) Routes(static fs.FS, c *cors.Cors) *http.ServeMux {
	mux := http.NewServeMux()

	if static != nil {
		mux.Handle("/", http.FileServer(http.FS(static)))
	}

	mux.HandleFunc("/ws", s.HandleWebSocket)

	mux.Handle("/api/bodies", c.Handler(http.HandlerFunc(s.HandleBodies)))
	mux.Handle("/api/info/{id}", c.Handler(http.HandlerFunc(s.HandleInfo)))
	mux.Handle("/api/stats", c.Handler(http.HandlerFunc(s.HandleStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/metrics", s.metrics.Handler())

	s.log.Debug("Routes configured",
		"api_endpoints", []string{"/api/bodies", "/api/info/{id}", "/api/stats"},
	)
	return mux
}
