// Package pipeline wires the lookup client, event broker, history store and
// history agent into a running search runtime.
// This package is used by the CLI, the TUI and the MCP server.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snpscope/src/broker"
	"snpscope/src/config"
	"snpscope/src/history"
	"snpscope/src/logger"
	"snpscope/src/lookup"
	"snpscope/src/search"
	"snpscope/src/store"
)

// Mode selects how search events travel.
type Mode int

const (
	// LocalMode keeps events in process with the in-memory broker.
	LocalMode Mode = iota
	// DistributedMode publishes events to Redpanda.
	DistributedMode
)

func (m Mode) String() string {
	if m == DistributedMode {
		return "distributed"
	}
	return "local"
}

// DetectMode picks DistributedMode when brokers are configured.
func DetectMode(cfg *config.Config) Mode {
	if len(cfg.RedpandaBrokers) > 0 {
		return DistributedMode
	}
	return LocalMode
}

// agentStopTimeout bounds how long Close waits for the history agent.
const agentStopTimeout = 2 * time.Second

// Runtime is a started search stack.
type Runtime struct {
	Mode        Mode
	Client      *lookup.Client
	Broker      broker.Broker
	Store       store.Store
	History     *history.Agent
	Coordinator *search.Coordinator

	log    logger.Logger
	cancel context.CancelFunc
}

// Start builds every component and starts the history agent. The agent is
// subscribed before Start returns, so no search is missed.
func Start(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	mode := DetectMode(cfg)

	client := lookup.NewClient(cfg.ServiceURL,
		lookup.WithTimeout(cfg.RequestTimeout),
		lookup.WithLogger(log),
	)

	var brk broker.Broker
	if mode == DistributedMode {
		rp, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, broker.WithBrokerLogger(log))
		if err != nil {
			return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
		}
		brk = rp
	} else {
		brk = broker.NewInMemoryBroker()
	}

	st, err := store.Open(ctx, store.Options{
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.HistoryDBPath,
	})
	if err != nil {
		brk.Close()
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	agent := history.NewAgent(brk, st, log)
	if err := agent.Start(runCtx); err != nil {
		cancel()
		brk.Close()
		st.Close()
		return nil, err
	}

	coord := search.NewCoordinator(client,
		search.WithPublisher(brk),
		search.WithLogger(log),
	)

	log.Debug("[Pipeline] Started in %s mode (service %s)", mode, cfg.ServiceURL)

	return &Runtime{
		Mode:        mode,
		Client:      client,
		Broker:      brk,
		Store:       st,
		History:     agent,
		Coordinator: coord,
		log:         log,
		cancel:      cancel,
	}, nil
}

// Close stops the history agent and releases the broker and store.
func (r *Runtime) Close() error {
	brokerErr := r.Broker.Close()

	select {
	case <-r.History.Done():
	case <-time.After(agentStopTimeout):
		r.log.Error("[Pipeline] History agent did not stop within %s", agentStopTimeout)
	}
	r.cancel()

	return errors.Join(brokerErr, r.Store.Close())
}
