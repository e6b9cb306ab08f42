// Package routing implements PickRoute (§4.7), the pure function deciding
// which acquirer adapter handles a payment intent's confirm call. It has no
// direct teacher analogue — DESIGN.md records it as new, spec-prescribed
// control flow with no library need.
package routing

import (
	"payment-gateway/internal/acquirer"
	"payment-gateway/internal/core/domain"
)

// Env exposes the process-level routing fallback (DEFAULT_ADAPTER env var).
type Env interface {
	DefaultAdapter() string
}

// PickRoute implements the three-step algorithm in §4.7:
//  1. A route already resolved on the intent wins outright (stable routing
//     across retries and the 3DS continuation leg).
//  2. Otherwise, for the "default" strategy: the merchant's named default
//     adapter if enabled, else the environment's DEFAULT_ADAPTER, else "mock".
//  3. "rules" and "smart" strategies are reserved and fall back to the
//     default path until implemented.
func PickRoute(intent *domain.PaymentIntent, config domain.RoutingConfig, env Env) acquirer.Route {
	if existing := intent.AcquirerRouting.SelectedRoute; existing != nil {
		return acquirer.Route{
			Adapter:     existing.Adapter,
			MerchantRef: existing.MerchantRef,
		}
	}

	switch config.Strategy {
	case "rules", "smart", "default", "":
		return defaultRoute(config, env)
	default:
		return defaultRoute(config, env)
	}
}

func defaultRoute(config domain.RoutingConfig, env Env) acquirer.Route {
	if config.DefaultAdapter != "" && config.Adapters[config.DefaultAdapter] {
		return acquirer.Route{Adapter: config.DefaultAdapter}
	}
	if env != nil {
		if name := env.DefaultAdapter(); name != "" {
			return acquirer.Route{Adapter: name}
		}
	}
	return acquirer.Route{Adapter: "mock"}
}
