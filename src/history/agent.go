// Package history provides the History Agent.
// The agent consumes search events from the broker and records them in the
// history store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"snpscope/src/broker"
	"snpscope/src/contracts"
	"snpscope/src/logger"
	"snpscope/src/store"
)

// ConsumerGroup is the broker group the agent joins.
const ConsumerGroup = "snpscope-history"

// Agent records search events.
type Agent struct {
	broker   broker.Broker
	store    store.Store
	logger   logger.Logger
	recorded atomic.Int64
	done     chan struct{}
}

// NewAgent creates a new history agent.
func NewAgent(brk broker.Broker, st store.Store, log logger.Logger) *Agent {
	return &Agent{
		broker: brk,
		store:  st,
		logger: log,
		done:   make(chan struct{}),
	}
}

// Run subscribes to the search topic and records events until ctx ends or
// the subscription closes.
func (a *Agent) Run(ctx context.Context) error {
	msgChan, err := a.subscribe(ctx)
	if err != nil {
		close(a.done)
		return err
	}
	return a.consume(ctx, msgChan)
}

// Start subscribes synchronously, so no event published afterwards is
// missed, then records in the background.
func (a *Agent) Start(ctx context.Context) error {
	msgChan, err := a.subscribe(ctx)
	if err != nil {
		close(a.done)
		return err
	}
	go func() {
		if err := a.consume(ctx, msgChan); err != nil && ctx.Err() == nil {
			a.logger.Error("[HistoryAgent] Stopped: %v", err)
		}
	}()
	return nil
}

// Done is closed once the agent stops consuming.
func (a *Agent) Done() <-chan struct{} { return a.done }

// Recorded returns how many events were saved.
func (a *Agent) Recorded() int64 { return a.recorded.Load() }

func (a *Agent) subscribe(ctx context.Context) (<-chan broker.Message, error) {
	a.logger.Info("[HistoryAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicSearches, ConsumerGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicSearches, err)
	}

	a.logger.Info("[HistoryAgent] Listening for searches on '%s' topic...", contracts.TopicSearches)
	return msgChan, nil
}

func (a *Agent) consume(ctx context.Context, msgChan <-chan broker.Message) error {
	defer close(a.done)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[HistoryAgent] Message channel closed, shutting down")
				return nil
			}

			if err := a.processEvent(ctx, msg); err != nil {
				a.logger.Error("[HistoryAgent] Error recording search: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[HistoryAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processEvent decodes and stores one search event.
func (a *Agent) processEvent(ctx context.Context, msg broker.Message) error {
	var ev contracts.SearchEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal search event: %w", err)
	}

	if err := a.store.SaveSearch(ctx, ev); err != nil {
		return fmt.Errorf("failed to save search %s: %w", ev.ID, err)
	}

	a.recorded.Add(1)
	a.logger.Debug("[HistoryAgent] Recorded %s search '%s' (%d/%d found)",
		ev.Kind, ev.Query, ev.Found, ev.Requested)
	return nil
}
