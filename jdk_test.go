package jdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jdk/pkg/config"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/version"
)

func TestBuildQuery(t *testing.T) {
	t.Run("empty config yields platform defaults", func(t *testing.T) {
		query, err := BuildQuery(&config.Config{})
		require.NoError(t, err)
		assert.Equal(t, platform.CurrentOS(), query.OS)
		assert.Equal(t, platform.CurrentArch(), query.Arch)
		assert.Equal(t, "latest", query.Version.String())
		assert.True(t, query.StableOnly)
		assert.True(t, query.ProductionUseOnly)
		assert.False(t, query.LTSOnly)
	})

	t.Run("config defaults applied", func(t *testing.T) {
		cfg := &config.Config{Query: config.QueryDefaults{
			Version: "21+",
			Vendor:  "eclipse",
			LTSOnly: true,
		}}
		query, err := BuildQuery(cfg)
		require.NoError(t, err)
		assert.Equal(t, "21+", query.Version.String())
		assert.Equal(t, "eclipse", query.Vendor)
		assert.True(t, query.LTSOnly)
	})

	t.Run("caller options override config", func(t *testing.T) {
		cfg := &config.Config{Query: config.QueryDefaults{Version: "17", Vendor: "azul"}}
		query, err := BuildQuery(cfg,
			WithVersion(version.MustParse("21")),
			WithVendor("oracle"))
		require.NoError(t, err)
		assert.Equal(t, "21", query.Version.String())
		assert.Equal(t, "oracle", query.Vendor)
	})

	t.Run("invalid config version", func(t *testing.T) {
		cfg := &config.Config{Query: config.QueryDefaults{Version: "not-a-version"}}
		_, err := BuildQuery(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid version in configuration")
	})

	t.Run("boolean pointer defaults", func(t *testing.T) {
		off := false
		cfg := &config.Config{Query: config.QueryDefaults{StableOnly: &off, ProductionUseOnly: &off}}
		query, err := BuildQuery(cfg)
		require.NoError(t, err)
		assert.False(t, query.StableOnly)
		assert.False(t, query.ProductionUseOnly)
	})
}
