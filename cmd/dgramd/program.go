package main

import (
	"os"
	"strings"

	"github.com/go-gost/dgram/pkg/config"
	"github.com/go-gost/dgram/pkg/config/parsing"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/metrics"
	"github.com/go-gost/dgram/pkg/outcome"
	"github.com/go-gost/dgram/pkg/protocol/udp"
	"github.com/go-gost/dgram/pkg/registry"
	"github.com/judwhite/go-svc"
)

const (
	bindMessageSize = 1024
)

type program struct {
	protos *registry.Protocols
}

func (p *program) Init(env svc.Environment) error {
	cfg := &config.Config{}
	if cfgFile != "" {
		if err := cfg.ReadFile(strings.TrimSpace(cfgFile)); err != nil {
			logger.Default().Error(err)
			return err
		}
	} else if err := cfg.Load(); err != nil {
		logger.Default().Error(err)
		return err
	}

	if v := os.Getenv("DGRAM_LOGGER_LEVEL"); v != "" {
		if cfg.Log == nil {
			cfg.Log = &config.LogConfig{}
		}
		cfg.Log.Level = v
	}
	if v := os.Getenv("DGRAM_METRICS"); v != "" {
		cfg.Metrics = &config.MetricsConfig{
			Addr: v,
		}
	}
	if debug {
		if cfg.Log == nil {
			cfg.Log = &config.LogConfig{}
		}
		cfg.Log.Level = string(logger.DebugLevel)
	}
	if metricsAddr != "" {
		cfg.Metrics = &config.MetricsConfig{
			Addr: metricsAddr,
		}
	}

	logger.SetDefault(parsing.ParseLogger(cfg.Log))

	if outputFormat != "" {
		if err := cfg.Write(os.Stdout, outputFormat); err != nil {
			return err
		}
		os.Exit(0)
	}

	config.Set(cfg)

	if cfg.Metrics != nil {
		metrics.SetGlobal(metrics.NewMetrics(nil))
	}

	p.protos = registry.NewProtocols()
	if err := udp.Register(p.protos); err != nil {
		return err
	}
	p.protos.Seal()

	lns, err := parsing.ParseFrontends(cfg, p.protos)
	if err != nil {
		logger.Default().Error(err)
		return err
	}
	logger.Default().Debugf("%d listeners configured", len(lns))

	return nil
}

func (p *program) Start() error {
	log := logger.Default()
	cfg := config.Global()

	if cfg.Metrics != nil && cfg.Metrics.Addr != "" {
		s, err := metrics.NewService(cfg.Metrics.Addr, metrics.PathOption(cfg.Metrics.Path))
		if err != nil {
			log.Fatal(err)
		}
		go func() {
			defer s.Close()
			log.Info("metrics service on ", s.Addr())
			log.Fatal(s.Serve())
		}()
	}

	msg := outcome.NewBuffer(bindMessageSize)
	code := outcome.None
	for _, proto := range p.protos.All() {
		// every failed listener is logged by its transport.
		code |= proto.BindAll(msg)
		if code.Has(outcome.Abort) {
			break
		}
	}
	switch {
	case code.Has(outcome.Abort), code.Has(outcome.Fatal):
		log.Fatalf("starting listeners failed (%s)", code)
	case code.Has(outcome.Retryable):
		log.Warnf("some listeners could not be bound (%s)", code)
	}

	for _, proto := range p.protos.All() {
		proto.EnableAll()
		log.Infof("%s: %d listeners", proto.Name(), proto.Count())
	}

	return nil
}

func (p *program) Stop() error {
	if p.protos == nil {
		return nil
	}
	for _, proto := range p.protos.All() {
		proto.UnbindAll()
		logger.Default().Debugf("%s shutdown", proto.Name())
	}
	return nil
}
