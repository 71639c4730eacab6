/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	jerrors "github.com/Juice-Labs/borrow/pkg/errors"
	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/task"
	"github.com/Juice-Labs/borrow/pkg/utilities"
)

var (
	ErrInvalidPort = jerrors.New("server: address does not contain a valid port")

	allowedOrigins = []string{"http://localhost:3000"}

	shutdownTimeout = flag.Duration("shutdown-timeout", 5*time.Second, "Time allowed for in-flight requests on shutdown")
)

func init() {
	flag.Var(utilities.CommaValue{Value: &allowedOrigins}, "allowed-origins", "Comma separated list of origins allowed by CORS")
}

type Endpoint struct {
	Methods []string
	Path    string
	Handler http.Handler
}

type Server struct {
	url url.URL

	port int

	root      *mux.Router
	handler   http.Handler
	tlsConfig *tls.Config

	endpoints []Endpoint
	routes    sync.Once
}

func NewServer(address string, tlsConfig *tls.Config) (*Server, error) {
	url := url.URL{
		Host: address,
	}

	portStr := defaultPort(tlsConfig)
	if _, p, err := net.SplitHostPort(address); err == nil {
		portStr = p
	} else if strings.Contains(address, ":") && !strings.HasPrefix(address, "[") {
		// Bare IPv6 or more than one colon.
		return nil, ErrInvalidPort.Wrap(err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, ErrInvalidPort.Wrapf("address %q", address)
	}

	cors := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},

		AllowedHeaders: []string{
			"*",
		},
	})

	root := mux.NewRouter().StrictSlash(true)
	root.Use(logger.Middleware)
	handler := cors.Handler(root)

	server := &Server{
		url:       url,
		port:      port,
		root:      root,
		handler:   handler,
		tlsConfig: tlsConfig,
	}

	server.AddEndpointFunc("GET", "/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return server, nil
}

func defaultPort(tlsConfig *tls.Config) string {
	if tlsConfig != nil {
		return "443"
	}

	return "80"
}

func (server *Server) Port() int {
	return server.port
}

func (server *Server) AddEndpointFunc(method string, path string, fn http.HandlerFunc) {
	server.AddEndpoint(Endpoint{
		Methods: []string{method},
		Path:    path,
		Handler: fn,
	})
}

func (server *Server) AddEndpointHandler(method string, path string, handler http.Handler) {
	server.AddEndpoint(Endpoint{
		Methods: []string{method},
		Path:    path,
		Handler: handler,
	})
}

// AddEndpoint must be called before Handler or Run.
func (server *Server) AddEndpoint(endpoint Endpoint) {
	server.endpoints = append(server.endpoints, endpoint)
}

// Handler routes the registered endpoints. The endpoint list is frozen on the
// first call.
func (server *Server) Handler() http.Handler {
	server.routes.Do(func() {
		for _, endpoint := range server.endpoints {
			server.root.Methods(endpoint.Methods...).Path(endpoint.Path).Handler(endpoint.Handler)
		}
	})

	return server.handler
}

func (server *Server) Run(group task.Group) error {
	httpServer := http.Server{
		BaseContext: func(_ net.Listener) context.Context {
			return group.Ctx()
		},
		Addr:      server.url.Host,
		Handler:   server.Handler(),
		TLSConfig: server.tlsConfig,
	}

	group.GoFn("HTTP Listen", func(group task.Group) error {
		var err error
		if server.tlsConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}

		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.GoFn("HTTP Shutdown", func(group task.Group) error {
		<-group.Ctx().Done()

		ctx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(ctx)
	})

	return nil
}
