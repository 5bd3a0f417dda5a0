// Package controller runs the trading lifecycle: it owns the command
// surface (start, pause, resume, emergency exit, profile switch) and the
// monitor loop that watches prices, enters on rule signals, and exits on
// stop-loss or take-profit.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/metrics"
	"github.com/rustyeddy/daytrader/profiles"
	"github.com/rustyeddy/daytrader/risk"
	"github.com/rustyeddy/daytrader/state"
	"github.com/rustyeddy/daytrader/strategies"
)

// Options wires the controller's collaborators.
type Options struct {
	State    *state.Store
	Broker   broker.Broker
	Feed     market.Feed
	Profiles profiles.Store
	Rules    strategies.RuleSet

	// Interval between monitor steps; also the per-step deadline.
	Interval time.Duration
}

// Controller coordinates commands and the monitor loop over one shared
// state store. Command handlers and the loop both funnel every mutation
// through the store, so audit ordering needs no extra locking here.
type Controller struct {
	st    *state.Store
	brk   broker.Broker
	feed  market.Feed
	profs profiles.Store
	rules strategies.RuleSet

	interval time.Duration
	hist     *history

	// stepping guards against overlapping monitor iterations when a step
	// outlives the tick that started it.
	stepping atomic.Bool
}

func New(opts Options) *Controller {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	rules := opts.Rules
	if len(rules.Conditions) == 0 {
		rules = strategies.Default()
	}
	return &Controller{
		st:       opts.State,
		brk:      opts.Broker,
		feed:     opts.Feed,
		profs:    opts.Profiles,
		rules:    rules,
		interval: interval,
		hist:     newHistory(),
	}
}

// StartStrategy activates trading on the given ticker. Rejected while a
// position is held so the held position's ticker and the strategy ticker
// cannot diverge.
func (c *Controller) StartStrategy(ticker string) (bool, string) {
	snap := c.st.Snapshot()
	if snap.Active {
		metrics.RecordCommand("start", false)
		return false, "Strategy already active"
	}
	if snap.Phase == state.PhaseLong {
		metrics.RecordCommand("start", false)
		return false, "Cannot start strategy while holding a position"
	}

	active := true
	if err := c.st.Update(state.Change{Active: &active, Ticker: &ticker}); err != nil {
		metrics.RecordCommand("start", false)
		return false, fmt.Sprintf("Failed to start strategy: %v", err)
	}

	log.Info().Str("ticker", ticker).Msg("strategy started")
	metrics.RecordCommand("start", true)
	return true, fmt.Sprintf("Strategy started for %s", ticker)
}

// PauseStrategy halts new entries and stop/take monitoring. A held
// position stays open and unguarded until resume or emergency exit.
func (c *Controller) PauseStrategy() (bool, string) {
	snap := c.st.Snapshot()
	if !snap.Active {
		metrics.RecordCommand("pause", false)
		return false, "Strategy not active"
	}

	active := false
	if err := c.st.Update(state.Change{Active: &active}); err != nil {
		metrics.RecordCommand("pause", false)
		return false, fmt.Sprintf("Failed to pause strategy: %v", err)
	}

	metrics.RecordCommand("pause", true)
	if snap.Phase == state.PhaseLong {
		log.Warn().
			Str("ticker", snap.Ticker).
			Msg("paused while holding a position; stop-loss and take-profit are not monitored")
		return true, "Strategy paused (holding position)"
	}
	log.Info().Msg("strategy paused")
	return true, "Strategy paused"
}

// ResumeStrategy reactivates a paused strategy.
func (c *Controller) ResumeStrategy() (bool, string) {
	snap := c.st.Snapshot()
	if snap.Active {
		metrics.RecordCommand("resume", false)
		return false, "Strategy already active"
	}

	active := true
	if err := c.st.Update(state.Change{Active: &active}); err != nil {
		metrics.RecordCommand("resume", false)
		return false, fmt.Sprintf("Failed to resume strategy: %v", err)
	}

	log.Info().Str("ticker", snap.Ticker).Msg("strategy resumed")
	metrics.RecordCommand("resume", true)
	return true, "Strategy resumed"
}

// EmergencyExit closes any open position at market and deactivates the
// strategy. Safe to call repeatedly; a second call with no position is a
// no-op beyond confirming the idle state.
func (c *Controller) EmergencyExit(ctx context.Context) (bool, string) {
	snap := c.st.Snapshot()

	if snap.Phase == state.PhaseLong && snap.Position != nil {
		price, err := c.feed.Latest(ctx, snap.Position.Ticker)
		if err != nil {
			// Fall back to entry so the flatten order still goes out.
			log.Warn().Err(err).Msg("no market price for emergency exit, using entry price")
			price = snap.Position.EntryPrice
		}
		if err := c.exitTrade(ctx, *snap.Position, price, state.ExitEmergency); err != nil {
			metrics.RecordCommand("emergency_exit", false)
			return false, fmt.Sprintf("Emergency exit failed: %v", err)
		}
	}

	active := false
	if err := c.st.Update(state.Change{Active: &active}); err != nil {
		metrics.RecordCommand("emergency_exit", false)
		return false, fmt.Sprintf("Emergency exit failed: %v", err)
	}

	log.Info().Msg("emergency exit completed")
	metrics.RecordCommand("emergency_exit", true)
	return true, "Emergency exit completed"
}

// SetProfile switches the active risk profile. Unknown names are
// rejected and the current profile is kept.
func (c *Controller) SetProfile(name string) (bool, string) {
	if _, err := c.profs.Get(name); err != nil {
		metrics.RecordCommand("set_profile", false)
		if errors.Is(err, profiles.ErrNotFound) {
			return false, fmt.Sprintf("Profile not found: %s", name)
		}
		return false, fmt.Sprintf("Failed to load profile: %v", err)
	}

	if err := c.st.Update(state.Change{Profile: &name}); err != nil {
		metrics.RecordCommand("set_profile", false)
		return false, fmt.Sprintf("Failed to set profile: %v", err)
	}

	log.Info().Str("profile", name).Msg("profile changed")
	metrics.RecordCommand("set_profile", true)
	return true, fmt.Sprintf("Profile set to %s", name)
}

// Run drives the monitor loop until ctx is cancelled. Each iteration
// gets a deadline of one interval; a slow step makes the next tick skip
// rather than overlap.
func (c *Controller) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !c.stepping.CompareAndSwap(false, true) {
				log.Warn().Msg("monitor step still running, skipping tick")
				continue
			}
			stepCtx, cancel := context.WithTimeout(ctx, c.interval)
			err := c.Step(stepCtx)
			cancel()
			c.stepping.Store(false)

			metrics.RecordStep(err)
			if err != nil {
				log.Error().Err(err).Msg("monitor step failed")
			}
		}
	}
}

// Step runs one monitor iteration: observe the price, guard an open
// position, or look for an entry. Inactive state is a no-op, including
// while a position is held.
func (c *Controller) Step(ctx context.Context) error {
	snap := c.st.Snapshot()
	if !snap.Active || snap.Ticker == "" {
		return nil
	}
	metrics.SetEquity(snap.Equity)

	// A held position is guarded against its own ticker's price, which
	// is not necessarily the strategy ticker.
	if snap.Phase == state.PhaseLong && snap.Position != nil {
		price, err := c.feed.Latest(ctx, snap.Position.Ticker)
		if err != nil {
			return fmt.Errorf("price for %s: %w", snap.Position.Ticker, err)
		}
		return c.guardPosition(ctx, *snap.Position, price)
	}

	price, err := c.feed.Latest(ctx, snap.Ticker)
	if err != nil {
		return fmt.Errorf("price for %s: %w", snap.Ticker, err)
	}
	c.hist.Observe(snap.Ticker, price)
	return c.scanForEntry(ctx, snap, price)
}

// guardPosition checks the held position against its exit levels.
func (c *Controller) guardPosition(ctx context.Context, pos state.Position, price float64) error {
	switch {
	case price <= pos.StopLoss:
		return c.exitTrade(ctx, pos, price, state.ExitStopLoss)
	case price >= pos.TakeProfit:
		return c.exitTrade(ctx, pos, price, state.ExitTakeProfit)
	}
	return nil
}

// scanForEntry evaluates the rule set and opens a position on a signal.
func (c *Controller) scanForEntry(ctx context.Context, snap state.Snapshot, price float64) error {
	sig := c.rules.Evaluate(c.hist.Prices(snap.Ticker))
	if !sig.Enter {
		return nil
	}

	prof, err := c.profs.Get(snap.Profile)
	if err != nil {
		return fmt.Errorf("profile %q: %w", snap.Profile, err)
	}

	qty := risk.PositionSize(snap.Equity, price, prof.CapitalAllocationPct)
	if qty <= 0 {
		log.Warn().
			Str("ticker", snap.Ticker).
			Float64("price", price).
			Msg("entry signal but no affordable size")
		return nil
	}

	res, err := c.brk.PlaceOrder(ctx, broker.OrderRequest{
		Ticker:         snap.Ticker,
		Quantity:       qty,
		Kind:           broker.Market,
		ReferencePrice: price,
	})
	if err != nil {
		return fmt.Errorf("entry order: %w", err)
	}
	metrics.RecordOrder(c.brk.Name(), "buy")

	switch res.Status {
	case broker.StatusFilled:
		if err := c.st.EnterPosition(snap.Ticker, res.ExecutedPrice, qty); err != nil {
			return fmt.Errorf("record entry: %w", err)
		}
		log.Info().
			Str("ticker", snap.Ticker).
			Int64("quantity", qty).
			Float64("price", res.ExecutedPrice).
			Strs("conditions", conditionNames(sig.Met)).
			Msg("entered position")
	case broker.StatusSubmitted:
		// Fill outcome unknown; state must not change until confirmed.
		log.Info().
			Str("order_id", res.OrderID).
			Str("ticker", snap.Ticker).
			Msg("entry order submitted, awaiting fill")
	default:
		log.Warn().
			Str("order_id", res.OrderID).
			Str("status", string(res.Status)).
			Msg("entry order not filled")
	}
	return nil
}

// exitTrade flattens the position through the broker and, on a confirmed
// fill, records the exit.
func (c *Controller) exitTrade(ctx context.Context, pos state.Position, price float64, reason state.ExitReason) error {
	res, err := c.brk.PlaceOrder(ctx, broker.OrderRequest{
		Ticker:         pos.Ticker,
		Quantity:       -pos.Quantity,
		Kind:           broker.Market,
		ReferencePrice: price,
	})
	if err != nil {
		return fmt.Errorf("exit order: %w", err)
	}
	metrics.RecordOrder(c.brk.Name(), "sell")

	switch res.Status {
	case broker.StatusFilled:
		pnl, err := c.st.ExitPosition(res.ExecutedPrice, reason)
		if err != nil {
			return fmt.Errorf("record exit: %w", err)
		}
		metrics.RecordExit(string(reason))
		metrics.SetEquity(c.st.Snapshot().Equity)
		log.Info().
			Str("ticker", pos.Ticker).
			Str("reason", string(reason)).
			Float64("price", res.ExecutedPrice).
			Float64("pnl", pnl).
			Msg("exited position")
		return nil
	case broker.StatusSubmitted:
		log.Info().
			Str("order_id", res.OrderID).
			Str("ticker", pos.Ticker).
			Str("reason", string(reason)).
			Msg("exit order submitted, awaiting fill")
		return nil
	default:
		return fmt.Errorf("exit order %s: unexpected status %s", res.OrderID, res.Status)
	}
}

func conditionNames(cs []strategies.Condition) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
