package router

import (
	"net/http"

	"pocket-mini-server/internal/config"
	"pocket-mini-server/internal/handler"
	"pocket-mini-server/internal/ingest"
	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/service"
	"pocket-mini-server/internal/session"
	"pocket-mini-server/internal/websocket"
	"pocket-mini-server/pkg/logging"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Deps are the long-lived components the routes are built on.
type Deps struct {
	Config   *config.Config
	Registry *session.Registry
	Manager  *websocket.Manager
	Logger   *logrus.Logger
}

func New(deps Deps) *mux.Router {
	cfg := deps.Config
	log := deps.Logger

	notifier := service.NewBroadcastService(deps.Manager, logging.Component(log, "broadcast"))
	actionService := service.NewActionService(notifier, logging.Component(log, "actions"))
	exportService := service.NewExportService()
	ingestor := ingest.New(logging.Component(log, "ingest"))

	deps.Manager.SetMessageHandler(handler.NewWebSocketMessageHandler(deps.Registry))

	sessionHandler := handler.NewSessionHandler(deps.Registry, cfg.Session.Secret, cfg.Session.TTL, logging.Component(log, "session"))
	actionHandler := handler.NewActionHandler(actionService)
	exportHandler := handler.NewExportHandler(exportService, logging.Component(log, "export"))
	uploadHandler := handler.NewUploadHandler(ingestor, actionService, cfg.Upload.MaxBytes)
	wsHandler := handler.NewWebSocketHandler(
		deps.Manager,
		deps.Registry,
		cfg.Session.Secret,
		cfg.WebSocket.ReadBufferSize,
		cfg.WebSocket.WriteBufferSize,
		logging.Component(log, "websocket"),
	)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(logging.Component(log, "http")))
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	sess := api.PathPrefix("/session").Subrouter()
	sess.Use(middleware.SessionMiddleware(cfg.Session.Secret, deps.Registry))

	sess.HandleFunc("/state", sessionHandler.State).Methods("GET", "OPTIONS")

	sess.HandleFunc("/counter/increment", actionHandler.Increment).Methods("POST", "OPTIONS")
	sess.HandleFunc("/counter/reset", actionHandler.ResetCounter).Methods("POST", "OPTIONS")

	sess.HandleFunc("/notes", actionHandler.AddNote).Methods("POST", "OPTIONS")
	sess.HandleFunc("/notes/{id}", actionHandler.DeleteNote).Methods("DELETE", "OPTIONS")

	sess.HandleFunc("/game/next-round", actionHandler.NextRound).Methods("POST", "OPTIONS")
	sess.HandleFunc("/game/reset", actionHandler.ResetGame).Methods("POST", "OPTIONS")

	sess.HandleFunc("/export", exportHandler.Export).Methods("GET", "OPTIONS")

	sess.HandleFunc("/uploads", uploadHandler.Upload).Methods("POST", "OPTIONS")
	sess.HandleFunc("/uploads/save", uploadHandler.SaveToNotes).Methods("POST", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"pocket-mini-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Pocket Mini App API","version":"1.0.0","endpoints":{"/api/v1/sessions":"POST","/api/v1/session/state":"GET (session)","/api/v1/session/export":"GET (session)","/ws":"GET (session)"}}`))
}
