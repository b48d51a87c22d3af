package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - code: gold
    name: Gold
    price: 1000
    daily_return: 60
    duration_days: 20
    active: true
  - code: basic
    name: Basic
    price: 100
    daily_return: 5
    duration_days: 30
    bonus_per_day: 1
    total_bonus_days: 3
    active: true
  - code: retired
    name: Retired
    price: 50
    daily_return: 1
    duration_days: 10
    active: false
`), 0o600))

	c, err := LoadFromPath(path)
	require.NoError(t, err)

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "basic", active[0].Code)
	assert.Equal(t, "gold", active[1].Code)

	p, err := c.Get("basic")
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalBonusDays)

	_, err = c.Get("retired")
	assert.NoError(t, err)
	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, c.Active(), len(DefaultProducts()))
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	tests := []struct {
		name    string
		product Product
	}{
		{"missing code", Product{Name: "x", Price: 1, DailyReturn: 1, DurationDays: 1}},
		{"zero price", Product{Code: "x", DailyReturn: 1, DurationDays: 1}},
		{"bonus longer than plan", Product{Code: "x", Price: 1, DailyReturn: 1, DurationDays: 2, TotalBonusDays: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Product{tt.product})
			assert.Error(t, err)
		})
	}
}
