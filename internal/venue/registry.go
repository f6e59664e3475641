package venue

import (
	"fmt"

	"github.com/orgr/arbitrage-bot/internal/config"
	"go.uber.org/zap"
)

// Factory constructs an adapter from its config entry.
type Factory func(cfg config.VenueCfg, log *zap.Logger) (Adapter, error)

var factories = map[string]Factory{}

// RegisterKind makes a venue kind available to New. Called from the
// concrete venue packages' init functions.
func RegisterKind(kind string, f Factory) { factories[kind] = f }

// New constructs the adapter for one configured venue. An unknown kind
// fails with ErrUnsupported so the caller can apply its per-venue startup
// policy (drop the venue, keep the rest).
func New(vc config.VenueCfg, log *zap.Logger) (Adapter, error) {
	f, ok := factories[vc.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: kind %q (venue %q)", ErrUnsupported, vc.Kind, vc.ID)
	}
	a, err := f(vc, log)
	if err != nil {
		return nil, fmt.Errorf("venue %q: %w", vc.ID, err)
	}
	return a, nil
}
