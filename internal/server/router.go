// Package server hosts the service routers behind a host based router
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/hostrouter"
)

type Server struct {
	*http.Server

	hostRouter hostrouter.Routes
	fallback   chi.Router
}

func New(addr string) *Server {
	hr := hostrouter.New()
	fallback := chi.NewRouter()
	hr.Map("*", fallback)

	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hostRouter: hr,
		fallback:   fallback,
	}

	r := chi.NewRouter()
	r.Mount("/", hr)
	s.Server.Handler = r

	return s
}

func (s *Server) RegisterDomain(domain string, router chi.Router) {
	s.hostRouter.Map(strings.ToLower(domain), router)
}

// Register maps router onto each host. With no hosts it is mounted at prefix
// on every host instead.
func (s *Server) Register(hosts []string, prefix string, router chi.Router) {
	if len(hosts) == 0 {
		s.fallback.Mount(prefix, router)
		return
	}
	for _, h := range hosts {
		s.RegisterDomain(h, router)
	}
}
