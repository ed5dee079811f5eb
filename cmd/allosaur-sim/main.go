// Command allosaur-sim runs a replicated accumulator authority and a set of
// holders through rounds of revocations and admissions. After each round the
// remaining holders update their witnesses through threshold queries and
// prove membership against a signed checkpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/taurusgroup/allosaur/pkg/authority"
	"github.com/taurusgroup/allosaur/pkg/pool"
	"github.com/taurusgroup/allosaur/pkg/registry"
)

var (
	configFile = flag.String("config", "", "Location of config file.")
)

func metrics(addr string, reg *prometheus.Registry, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			fmt.Fprintln(rw, "allosaur-sim metrics server")
		} else {
			rw.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(rw, "404 not found")
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	log.WithField("addr", addr).Info("starting metrics server")
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}

func run(config *Config, log *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if config.MetricsAddr != "" {
		go metrics(config.MetricsAddr, reg, log)
	}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	groups := registry.New[*authority.Group](log)
	handle, err := groups.Create(func() (*authority.Group, error) {
		return NewGroup(config, reg, log, pl)
	})
	if err != nil {
		return err
	}
	defer func() { _ = groups.Destroy(handle) }()

	return groups.With(handle, func(g *authority.Group) error {
		return Simulate(context.Background(), config, g, log)
	})
}

func main() {
	flag.Parse()

	// Load config from disk.
	if *configFile == "" {
		logrus.Fatal("No config file provided, see --help.")
	}
	config, err := ReadConfig(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config file")
	}

	log := config.Log.Logger()
	if err = run(config, log); err != nil {
		log.WithError(err).Fatal("simulation failed")
	}
	log.Info("simulation complete")
}
