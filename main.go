package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Shortcircuit/internal/auth"
	"Shortcircuit/internal/calc/batch"
	"Shortcircuit/internal/calc/chart"
	"Shortcircuit/internal/calc/export"
	"Shortcircuit/internal/calc/fault"
	"Shortcircuit/internal/calc/importer"
	"Shortcircuit/internal/calc/report"
	"Shortcircuit/internal/config"
	"Shortcircuit/internal/preset"
	"Shortcircuit/internal/repo"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg *config.Config, store repo.Repository) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store}
	presetH := &preset.PresetHandler{Repo: store}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	faultH := &fault.Handler{}
	batchH := &batch.Handler{Workers: cfg.BatchWorkers}
	importH := &importer.Handler{MaxUpload: cfg.MaxUploadBytes}
	exportH := &export.Handler{}
	chartH := &chart.Handler{}
	reportH := &report.Handler{}

	secureApi.HandleFunc("/tools/fault/calc", faultH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/fault/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/fault/import", importH.Fault).Methods("POST")
	secureApi.HandleFunc("/tools/fault/xlsx", exportH.XLSX).Methods("POST")
	secureApi.HandleFunc("/tools/fault/plot", chartH.PNG).Methods("POST")
	secureApi.HandleFunc("/tools/fault/chart", chartH.HTML).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	secureApi.HandleFunc("/presets", presetH.List).Methods("GET")
	secureApi.HandleFunc("/presets", presetH.Create).Methods("POST")
	secureApi.HandleFunc("/presets/{id:[0-9]+}", presetH.Get).Methods("GET")
	secureApi.HandleFunc("/presets/{id:[0-9]+}", presetH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/presets/{id:[0-9]+}/calc", presetH.Calc).Methods("POST")
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer db.Close()
	store := repo.NewPostgres(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	mux := mux.NewRouter()
	HandleList(mux, cfg, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.Addr)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
