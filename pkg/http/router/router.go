package router

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/satryanta/geofuse/pkg/http/router/controllers"
	router_helper "github.com/satryanta/geofuse/pkg/http/router/routerhelper"
	http_server "github.com/satryanta/geofuse/pkg/http/server"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "net/http/pprof"
)

type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			GeoFuse Positioning API
//	@version		1.0
//	@description	Sensor-fusion positioning engine: fix gating, kalman smoothing, dead reckoning and snap-to-roads.

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,

	useRateLimit bool,
	positioningService controllers.PositioningService,
) error {
	log.Info("Run httprouter API")

	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")
	positioningAPI := controllers.New(positioningService, log)
	positioningAPI.Routes(group)

	var mwChain []alice.Constructor
	mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log))
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	mainMwChain := alice.New(mwChain...).Then(router)

	srv := http_server.New(ctx, mainMwChain, config, false)

	errChan := make(chan error, 2)
	go func() {
		api.log.Info("positioning REST API running", zap.Int("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go api.handleWebsocket(ctx, config, positioningService, errChan)

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// handleWebsocket serves the device sensor stream on the websocket port.
// One goroutine pair per connection; the hub mediates between connections
// and the engine queue.
func (api *API) handleWebsocket(ctx context.Context, config http_server.Config,
	positioningService controllers.PositioningService, errChan chan error,
) {
	api.hub = controllers.NewHub(api.log, positioningService)

	wsRouter := httprouter.New()
	wsRouter.HandlerFunc(http.MethodGet, "/ws", api.hub.Upgrade)

	srv := http_server.New(ctx, wsRouter, config, true)

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	api.log.Info("positioning websocket API running", zap.Int("port", config.WebsocketPort))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- err
	}
}

func swaggerHandler(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(w, r)
}
