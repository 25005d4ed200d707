package dashboard

import (
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/config"
	"trip-dashboard/internal/dashboard/web"
	"trip-dashboard/internal/loader"
	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/scene"
)

const serverVersion = "1.0.0"

// StreamMetrics tracks connected stream clients. It may be nil.
type StreamMetrics interface {
	StreamOpened()
	StreamClosed()
}

type Server struct {
	router  *mux.Router
	handler http.Handler
	cfg     *config.Config
	panel   *playback.Panel
	player  *playback.Player
	icons   scene.Icons
	metrics StreamMetrics

	tripName string

	// keepAlive is the interval between SSE comments on idle streams.
	keepAlive time.Duration
}

func NewServer(cfg *config.Config, panel *playback.Panel, player *playback.Player, m StreamMetrics) *Server {
	srv := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		panel:     panel,
		player:    player,
		icons:     scene.DefaultIcons(cfg.PublicURL),
		metrics:   m,
		tripName:  loader.TripName(cfg.TripSource, cfg.TripID),
		keepAlive: 15 * time.Second,
	}

	api := srv.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scene", srv.handleScene).Methods(http.MethodGet)
	api.HandleFunc("/summary", srv.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/playback", srv.handlePlayback).Methods(http.MethodGet)
	api.HandleFunc("/playback/toggle", srv.handleToggle).Methods(http.MethodPost)
	api.HandleFunc("/playback/speed", srv.handleSpeed).Methods(http.MethodPut, http.MethodPost)
	api.HandleFunc("/stream", srv.handleStream).Methods(http.MethodGet)

	srv.router.HandleFunc("/config.js", srv.handleDynamic).Methods(http.MethodGet)
	srv.router.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)

	staticFS, _ := fs.Sub(web.Files, ".")
	srv.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	srv.handler = handlers.CustomLoggingHandler(io.Discard, cors(srv.router), logRequest)
	srv.handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(srv.handler)

	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Dashboard-Version", serverVersion)
	s.handler.ServeHTTP(w, r)
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	log.Debug().
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Msg("http request")
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Interface("panic", v).Msg("http handler panic")
}
