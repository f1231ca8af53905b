package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
)

func TestGeofenceConfig(t *testing.T) {
	cfg := config.Defaults().Engine
	cfg.MaxSpeedKmh = 90
	cfg.Zones = map[string]config.Zone{
		"depot_lviv": {CenterLat: 49.84, CenterLon: 24.03, RadiusMeters: 750},
	}

	out := geofenceConfig(cfg)

	assert.Equal(t, 90.0, out.MaxSpeedKmh)
	require.Contains(t, out.Zones, "depot_lviv")
	assert.Equal(t, 750.0, out.Zones["depot_lviv"].RadiusMeters)
	assert.Greater(t, len(out.Zones), 1, "built-in zones are kept")
}

func TestSanctionsConfig(t *testing.T) {
	t.Run("defaults when none configured", func(t *testing.T) {
		cfg := config.EngineConfig{}
		assert.NotEmpty(t, sanctionsConfig(cfg).WatchLists)
	})

	t.Run("configured lists replace defaults", func(t *testing.T) {
		cfg := config.EngineConfig{WatchLists: []config.WatchList{
			{Name: "OFAC", NameTerms: []string{"acme"}, CountryCodes: []string{"KP"}},
		}}
		lists := sanctionsConfig(cfg).WatchLists
		require.Len(t, lists, 1)
		assert.True(t, lists[0].Matches("Acme Shipping", ""))
	})
}

func TestStaticMedianSource(t *testing.T) {
	cfg := config.EngineConfig{
		MedianSource: config.MedianSourceStatic,
		BasePrices:   []config.BasePrice{{Prefix: "ORD-HAZ", Price: 2500}},
		DefaultPrice: 800,
	}

	src := staticMedianSource(cfg)
	static, ok := src.(pricing.StaticMedianSource)
	require.True(t, ok)
	assert.True(t, static.Prices.For("ORD-HAZ-1").Equal(decimal.NewFromInt(2500)))
	assert.True(t, static.Prices.For("ORD-ADR-1").Equal(decimal.NewFromInt(800)))

	cfg.MedianSource = config.MedianSourceRandomized
	_, ok = staticMedianSource(cfg).(*pricing.RandomizedMedianSource)
	assert.True(t, ok)
}
