package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Port          int
	WebsocketPort int
	Timeout       time.Duration
}

// New builds the http.Server for either the REST port or the websocket
// port. The websocket server carries no write timeout; position streams are
// long-lived.
func New(ctx context.Context, handler http.Handler, config Config, isWs bool) *http.Server {
	port := config.Port
	if isWs {
		port = config.WebsocketPort
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     handler,
		ReadTimeout: config.Timeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
	if !isWs {
		srv.WriteTimeout = config.Timeout
	}
	return srv
}
