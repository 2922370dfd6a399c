package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	rand "math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/elemental-arena/server/cmd/elemental/shared"
	"github.com/elemental-arena/server/internal/randutil"
	"github.com/elemental-arena/server/internal/server"
)

// ServerCmd runs the game server
type ServerCmd struct {
	Addr         string `short:"a" help:"Server address (overrides config)"`
	Config       string `short:"c" default:"elemental.hcl" help:"Path to HCL configuration file"`
	Debug        bool   `help:"Enable debug logging"`
	Seed         *int64 `help:"RNG seed for reproducible games"`
	ReapInterval int    `default:"30" help:"Seconds between finished-room sweeps"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	shared.ParseLevel(logger, cfg.Server.LogLevel, c.Debug)

	addr := cfg.Server.Address
	if c.Addr != "" {
		addr = c.Addr
	}

	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}
	rng = randutil.New(seed)

	reapGrace, err := cfg.ReapGraceDuration()
	if err != nil {
		return err
	}

	service := server.NewGameService(logger, rng,
		server.WithRules(cfg.Rules()),
		server.WithReapGrace(reapGrace),
	)
	s := server.NewServer(logger, service)

	logger.Info("Starting elemental server",
		"address", addr,
		"rounds", cfg.Game.Rounds,
		"cards_per_deal", cfg.Game.CardsPerDeal,
		"reap_grace", reapGrace)

	ctx := shared.SetupSignalHandler(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return service.RunReaper(ctx, time.Duration(c.ReapInterval)*time.Second)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
