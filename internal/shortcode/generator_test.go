package shortcode

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRandomString_Alphabet(t *testing.T) {
	code, err := RandomString(12)
	require.NoError(t, err)
	assert.Len(t, code, 12)
	for _, r := range code {
		assert.Contains(t, Charset, string(r))
	}
}

func TestGenerator_RandomStrategy(t *testing.T) {
	g, err := NewGenerator(Options{Strategy: StrategyRandom, Length: 7}, zap.NewNop().Sugar())
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := g.GetCode()
		require.NoError(t, err)
		assert.Len(t, code, 7)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 500)
}

func TestGenerator_ShortIDStrategyIsPathSafe(t *testing.T) {
	g, err := NewGenerator(Options{Strategy: StrategyShortID}, zap.NewNop().Sugar())
	require.NoError(t, err)

	code, err := g.GetCode()
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, code, url.PathEscape(code))
}

func TestGenerator_PoolServesCodes(t *testing.T) {
	g, err := NewGenerator(Options{Length: 6, PoolSize: 10}, zap.NewNop().Sugar())
	require.NoError(t, err)

	g.fillChannel()
	assert.Equal(t, 10, len(g.codeChan))

	code, err := g.GetCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, 9, len(g.codeChan))

	g.Stop()
	g.Stop()
}

func TestNewGenerator_UnknownStrategy(t *testing.T) {
	_, err := NewGenerator(Options{Strategy: "sequential"}, zap.NewNop().Sugar())
	assert.Error(t, err)
}
