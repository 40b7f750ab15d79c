package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/config"
	handlers "github.com/openreal2sim/review-dashboard/internal/handlers/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/openreal2sim/review-dashboard/internal/service"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/pkg/metrics"
	"github.com/openreal2sim/review-dashboard/pkg/middleware"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	objects  objectstore.ObjectStore
	listener net.Listener
}

// New returns a new instance of the review server.
func New(
	cfg *config.Config,
	store store.Store,
	objects objectstore.ObjectStore,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		objects:  objects,
		listener: listener,
	}
}

func oapiErrorHandler(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = fmt.Fprintf(w, "API Error: %s", message)
}

// Router builds the http handler. The request metrics are registered on reg.
func (s *Server) Router(reg prometheus.Registerer) (http.Handler, error) {
	swagger, err := api.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load swagger spec: %w", err)
	}
	// Skip server name validation
	swagger.Servers = nil

	oapiOpts := oapimiddleware.Options{
		ErrorHandler: oapiErrorHandler,
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegister(reg)

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Service.CorsOrigins,
			AllowedMethods: []string{"GET", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
		oapimiddleware.OapiRequestValidatorWithOptions(swagger, &oapiOpts),
	)

	reconstructionSrv := service.NewReconstructionService(s.store)
	sceneSrv, err := service.NewSceneService(reconstructionSrv, s.objects, s.cfg.Service.SceneCacheSize)
	if err != nil {
		return nil, err
	}

	h := handlers.NewServiceHandler(
		reconstructionSrv,
		service.NewExportService(s.store, s.objects),
		sceneSrv,
		service.NewStatsService(s.store),
	)
	h.RegisterRoutes(router)

	return router, nil
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router, err := s.Router(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	// no WriteTimeout: exports stream for as long as the archive takes
	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
