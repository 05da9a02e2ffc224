// Package strategy implements the two trading loops: copy-trading, which
// mirrors trades of followed accounts, and arbitrage, which executes both
// legs of crossed order books. Each loop runs on its own ticker; iterations
// of a single loop never overlap.
package strategy

import "context"

// Strategy is a long-running trading loop. Run blocks until the context is
// cancelled and returns the cancellation cause.
type Strategy interface {
	Name() string
	Run(ctx context.Context) error
}
