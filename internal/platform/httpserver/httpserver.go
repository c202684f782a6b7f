package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bounds each phase of a connection. Zero fields fall back to
// DefaultTimeouts.
type Timeouts struct {
	// ReadHeader limits how long anonymous clients of the public search may
	// hold a connection before sending headers.
	ReadHeader time.Duration
	// Read covers the largest body we accept, an information request with its
	// free-text description.
	Read time.Duration
	// Write must cover tenant statistics and the dashboard, which aggregate
	// every request and financial record of a tenant before responding.
	Write time.Duration
	Idle  time.Duration
}

// DefaultTimeouts are used when configuration leaves a timeout unset.
var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Read:       15 * time.Second,
	Write:      30 * time.Second,
	Idle:       60 * time.Second,
}

func (t Timeouts) withDefaults() Timeouts {
	if t.ReadHeader <= 0 {
		t.ReadHeader = DefaultTimeouts.ReadHeader
	}
	if t.Read <= 0 {
		t.Read = DefaultTimeouts.Read
	}
	if t.Write <= 0 {
		t.Write = DefaultTimeouts.Write
	}
	if t.Idle <= 0 {
		t.Idle = DefaultTimeouts.Idle
	}
	return t
}

// New builds the API server for the tenant and public routes.
func New(addr string, handler http.Handler, timeouts Timeouts) *http.Server {
	t := timeouts.withDefaults()
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.ReadHeader,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
	}
}
