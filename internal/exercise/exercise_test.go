package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaloriesFor(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		quantity float64
		want     float64
	}{
		{"running per km", KindRunning, 3, 180},
		{"cycling per km", KindCycling, 10, 400},
		{"swimming per meter", KindSwimming, 1000, 150},
		{"walking per km", KindWalking, 5, 150},
		{"yoga per minute", KindYoga, 30, 90},
		{"strength per minute", KindStrength, 45, 225},
		{"push ups per rep", KindPushUps, 50, 25},
		{"sit ups per rep", KindSitUps, 100, 30},
		{"pull ups per rep", KindPullUps, 20, 20},
		{"jump rope per minute", KindJumpRope, 15, 150},
		{"fractional quantity", KindRunning, 2.5, 150},
		{"unknown kind", Kind("skydiving"), 10, 0},
		{"zero quantity", KindRunning, 0, 0},
		{"negative quantity", KindRunning, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CaloriesFor(tt.kind, tt.quantity), 1e-9)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 3.0, ParseQuantity("3"))
	assert.Equal(t, 2.5, ParseQuantity(" 2.5 "))
	assert.Equal(t, 0.0, ParseQuantity(""))
	assert.Equal(t, 0.0, ParseQuantity("abc"))
	assert.Equal(t, 0.0, ParseQuantity("-5"))
}

func TestKnownAndUnits(t *testing.T) {
	assert.True(t, Known(KindRunning))
	assert.False(t, Known(Kind("skydiving")))

	assert.Equal(t, "km", UnitFor(KindRunning))
	assert.Equal(t, "m", UnitFor(KindSwimming))
	assert.Equal(t, "min", UnitFor(KindYoga))
	assert.Equal(t, "reps", UnitFor(KindPushUps))
	assert.Equal(t, "", UnitFor(Kind("skydiving")))
}

func TestKindsStableOrder(t *testing.T) {
	first := Kinds()
	second := Kinds()
	assert.Equal(t, first, second)
	assert.Len(t, first, 10)
	assert.Equal(t, KindRunning, first[0])

	for _, k := range first {
		info, ok := InfoFor(k)
		assert.True(t, ok)
		assert.NotEmpty(t, info.Unit)
		assert.Greater(t, info.CaloriesPerUnit, 0.0)
	}
}
