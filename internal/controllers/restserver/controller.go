// Package restserver serves archived processing runs over HTTP.
package restserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/log"
	"github.com/chrissnell/remotetide/internal/storage/sqlite"
	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/config"
)

// RunStore is the read side of the run archive
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]sqlite.RunSummary, error)
	GetRun(ctx context.Context, id string) (*sqlite.Run, error)
	GetSeries(ctx context.Context, id string) ([]tide.Row, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, store RunStore, rc config.RESTServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, errors.New("REST server requires a run archive")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultRESTPort)
		rc.Port = config.DefaultRESTPort
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		logger:     logger,
		handlers:   NewHandlers(store, logger),
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.Router()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and shuts it down when the
// controller's context is cancelled
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Router configures the HTTP router with all endpoints
func (c *Controller) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	router.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}/series", c.handlers.GetSeries).Methods(http.MethodGet)

	return router
}
