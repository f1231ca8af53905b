package main

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
	"github.com/nodeorb/scm-risk-engine/internal/service/geofence"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
	"github.com/nodeorb/scm-risk-engine/internal/service/sanctions"
)

const serviceName = "scm-risk-engine"

// geofenceConfig overlays configured zones on the built-in table
func geofenceConfig(cfg config.EngineConfig) geofence.Config {
	out := geofence.DefaultConfig()
	for name, z := range cfg.Zones {
		out.Zones[name] = geofence.ZoneConfig{
			CenterLat:    z.CenterLat,
			CenterLon:    z.CenterLon,
			RadiusMeters: z.RadiusMeters,
		}
	}
	if cfg.MaxSpeedKmh > 0 {
		out.MaxSpeedKmh = cfg.MaxSpeedKmh
	}
	return out
}

// sanctionsConfig replaces the built-in watch lists when any are configured
func sanctionsConfig(cfg config.EngineConfig) sanctions.Config {
	out := sanctions.DefaultConfig()
	if len(cfg.WatchLists) == 0 {
		return out
	}
	out.WatchLists = make([]sanctions.WatchList, 0, len(cfg.WatchLists))
	for _, wl := range cfg.WatchLists {
		out.WatchLists = append(out.WatchLists, sanctions.WatchList{
			Name:         wl.Name,
			NameTerms:    wl.NameTerms,
			CountryCodes: wl.CountryCodes,
		})
	}
	return out
}

func basePrices(cfg config.EngineConfig) pricing.BasePrices {
	out := pricing.DefaultBasePrices()
	if len(cfg.BasePrices) > 0 {
		out.Prefixes = make([]pricing.PrefixPrice, 0, len(cfg.BasePrices))
		for _, bp := range cfg.BasePrices {
			out.Prefixes = append(out.Prefixes, pricing.PrefixPrice{
				Prefix: bp.Prefix,
				Price:  decimal.NewFromFloat(bp.Price),
			})
		}
	}
	if cfg.DefaultPrice > 0 {
		out.Default = decimal.NewFromFloat(cfg.DefaultPrice)
	}
	return out
}

// staticMedianSource picks the non-database median source. The postgres
// source wraps the result as its fallback.
func staticMedianSource(cfg config.EngineConfig) pricing.MedianSource {
	prices := basePrices(cfg)
	if cfg.MedianSource == config.MedianSourceRandomized {
		return pricing.NewRandomizedMedianSource(prices, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return pricing.StaticMedianSource{Prices: prices}
}
