package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Structura/internal/auth"
	"Structura/internal/calc/analysis"
	"Structura/internal/calc/components"
	"Structura/internal/calc/energy"
	"Structura/internal/calc/importer"
	"Structura/internal/calc/report"
	"Structura/internal/calc/safety"
	"Structura/internal/chat"
	"Structura/internal/config"
	"Structura/internal/logger"
	"Structura/internal/profile"
	"Structura/internal/repo"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			logger.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// HandleList registers every route and returns the fully wrapped handler.
func HandleList(cfg config.Config, db *sql.DB, store *repo.SQLRepository) (http.Handler, error) {
	svc, err := analysis.NewService(cfg.CacheSize, store)
	if err != nil {
		return nil, err
	}
	maxUpload := cfg.UploadMaxMB << 20

	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: store, Insecure: !cfg.TLS()}
	profileH := &profile.ProfileHandler{Repo: store}
	analysisH := &analysis.Handler{Svc: svc}
	reportH := &report.Handler{Svc: svc}
	importH := &importer.Handler{MaxUpload: maxUpload}
	chatH := &chat.Handler{Responder: chat.NewResponder(nil), MaxUpload: maxUpload}
	safetyH := &safety.Handler{}
	componentsH := &components.Handler{}
	energyH := &energy.Handler{}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logger.AccessLog, middleware.Recoverer)

	r.HandleFunc("/ws/chat", chatH.WS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", health(db)).Methods("GET")

	public := api.NewRoute().Subrouter()
	public.Use(limiter.LimitMiddleware)
	public.HandleFunc("/analyze", analysisH.Analyze).Methods("POST")
	public.HandleFunc("/analyze/batch", analysisH.Batch).Methods("POST")
	public.HandleFunc("/safety", safetyH.Calc).Methods("POST")
	public.HandleFunc("/components", componentsH.Calc).Methods("POST")
	public.HandleFunc("/energy", energyH.Calc).Methods("POST")
	public.HandleFunc("/chat", chatH.Chat).Methods("POST")
	public.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	public.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	public.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := public.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)
	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/analyze", analysisH.Record).Methods("POST")
	secureApi.HandleFunc("/history", analysisH.History).Methods("GET")
	secureApi.HandleFunc("/history/{id}", analysisH.Get).Methods("GET")
	secureApi.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/components/import", importH.Components).Methods("POST")

	return CORS(r), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", "error", err)
	}
	logger.SetLevelFromString(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, store, err := repo.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database failed", "driver", cfg.DBDriver, "error", err)
	}
	defer db.Close()

	handler, err := HandleList(cfg, db, store)
	if err != nil {
		logger.Fatal("build router failed", "error", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "addr", cfg.Addr, "tls", cfg.TLS(), "db", cfg.DBDriver)
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", "error", err)
	}
	wg.Wait()
	logger.Info("server stopped")
}
