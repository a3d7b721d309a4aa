// Command matrix-service serves built timetable matrices (C7) as JSON over
// HTTP, following app/gtfs-tripupdate-svc/tripupdate/web_service.go's
// gorilla/mux server shape and app/gtfs-loader/main.go's conf.Parse +
// run(log) error shape.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/matrix"
	"github.com/transitstream/timetables/foundation/database"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "MATRIX_SERVICE : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		DB struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		Web struct {
			HTTPPort int `conf:"default:3500"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve built timetable matrices as read-only JSON"
	if err := conf.Parse(os.Args[1:], "MATRIX_SERVICE", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("MATRIX_SERVICE", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("MATRIX_SERVICE", &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("main: Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	srv := createServer(log, db, cfg.Web.HTTPPort)
	log.Printf("main: starting server on port %d", cfg.Web.HTTPPort)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Printf("main: %v : start shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

// matrixHandler holds what the /matrix endpoint needs to load and build a
// Grouping on demand; there is no cached state, every request rebuilds.
type matrixHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

// matrixResponse is the JSON envelope returned by GET /matrix.
type matrixResponse struct {
	Date     string           `json:"date"`
	Outbound *matrix.Grouping `json:"outbound"`
	Inbound  *matrix.Grouping `json:"inbound"`
}

func (h *matrixHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := func(format string, args ...any) {
		h.log.Printf("matrix-service: [%s] "+format, append([]any{requestID}, args...)...)
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	routes, err := h.resolveRoutes(r, date)
	if err != nil {
		log("resolving routes: %v", err)
		http.Error(w, "error resolving routes", http.StatusInternalServerError)
		return
	}
	if len(routes) == 0 {
		http.Error(w, "no routes match the request", http.StatusNotFound)
		return
	}

	trips, err := matrix.LoadTrips(h.db, routes, date)
	if err != nil {
		log("loading trips: %v", err)
		http.Error(w, "error loading trips", http.StatusInternalServerError)
		return
	}

	outbound, inbound := matrix.Build(trips)
	resp := matrixResponse{Date: date.Format("2006-01-02"), Outbound: outbound, Inbound: inbound}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log("encoding response: %v", err)
	}
}

// resolveRoutes picks the Routes a request names: explicit route_id query
// parameters take precedence, then service_code, falling back to every
// Route active on the requested date.
func (h *matrixHandler) resolveRoutes(r *http.Request, date time.Time) ([]timetable.Route, error) {
	if raw := r.URL.Query()["route_id"]; len(raw) > 0 {
		ids := make([]int64, len(raw))
		for i, s := range raw {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid route_id %q: %w", s, err)
			}
			ids[i] = id
		}
		return timetable.GetRoutesByIDs(h.db, ids)
	}
	if code := r.URL.Query().Get("service_code"); code != "" {
		return timetable.GetRoutesByServiceCode(h.db, code)
	}
	return timetable.GetRoutesActiveOn(h.db, date)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

type defaultHandler struct{}

func (defaultHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

func createServer(log *logger.Logger, db *sqlx.DB, httpPort int) *http.Server {
	handler := &matrixHandler{log: log, db: db}

	router := mux.NewRouter()
	router.Handle("/", defaultHandler{})
	router.Handle("/matrix", handler).Methods(http.MethodGet)

	return &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", httpPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
