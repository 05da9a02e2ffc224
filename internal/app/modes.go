package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/predictlabs/predictbot/internal/platform/exchange"
	"github.com/predictlabs/predictbot/internal/strategy"
)

// CopyMode runs only the copy-trading loop.
func (a *App) CopyMode(ctx context.Context, deps *Dependencies) error {
	if deps.Copy == nil {
		return fmt.Errorf("app: copy mode requires [copy] enabled = true")
	}
	return a.runStrategies(ctx, deps, deps.Copy)
}

// ArbMode runs only the arbitrage loop.
func (a *App) ArbMode(ctx context.Context, deps *Dependencies) error {
	if deps.Arb == nil {
		return fmt.Errorf("app: arb mode requires [arbitrage] enabled = true")
	}
	return a.runStrategies(ctx, deps, deps.Arb)
}

// FullMode runs every enabled strategy.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	var strategies []strategy.Strategy
	if deps.Copy != nil {
		strategies = append(strategies, deps.Copy)
	}
	if deps.Arb != nil {
		strategies = append(strategies, deps.Arb)
	}
	if len(strategies) == 0 {
		return fmt.Errorf("app: full mode requires at least one enabled strategy")
	}
	return a.runStrategies(ctx, deps, strategies...)
}

// runStrategies fans out each strategy (and the archiver, when configured)
// onto its own goroutine and blocks until one fails or the context is
// cancelled.
func (a *App) runStrategies(ctx context.Context, deps *Dependencies, strategies ...strategy.Strategy) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range strategies {
		g.Go(func() error {
			a.logger.Info("strategy starting", slog.String("strategy", s.Name()))
			return s.Run(ctx)
		})
	}

	if deps.Archiver != nil {
		g.Go(func() error {
			return deps.Archiver.Run(ctx, a.cfg.Archive.Interval.Duration)
		})
	}

	return g.Wait()
}

// MonitorMode places no orders. It subscribes to push updates for the first
// scanned markets and logs everything that arrives, which is useful for
// verifying connectivity and data quality before trading.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	scan := a.cfg.Arbitrage.ScanMarkets
	markets, err := deps.Exchange.GetMarkets(ctx, scan)
	if err != nil {
		return fmt.Errorf("app: monitor market list: %w", err)
	}

	if err := deps.Push.Connect(ctx); err != nil {
		return fmt.Errorf("app: monitor connect: %w", err)
	}
	defer deps.Push.Close()

	for _, m := range markets {
		if !m.Active {
			continue
		}
		market := m
		err := deps.Push.Subscribe(ctx, market.ID, func(msg exchange.MarketMessage) {
			a.logger.Info("push update",
				slog.String("market", market.ID),
				slog.String("type", msg.Type),
				slog.Int("bytes", len(msg.Data)),
			)
		})
		if err != nil {
			a.logger.Warn("subscribe failed",
				slog.String("market", market.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	a.logger.Info("monitoring", slog.Int("markets", len(markets)))
	<-ctx.Done()
	return ctx.Err()
}
