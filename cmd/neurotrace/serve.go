package main

import (
	"net/http"

	charmlog "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arborist/neurotrace/metrics"
)

// ServeCommand exposes the shared Prometheus registry over HTTP, for a
// long-running process that issues many traces via the reconstruct package
// directly and wants a scrape endpoint alongside it.
type ServeCommand struct {
	Addr string `help:"Listen address." default:":9090"`
}

func (c *ServeCommand) Run() error {
	reg := metrics.NewRegistry()
	http.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
	charmlog.Info("serving metrics", "addr", c.Addr)

	return http.ListenAndServe(c.Addr, nil)
}
