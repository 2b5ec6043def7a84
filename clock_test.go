package tpx3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHitImplementsPositionTOF(t *testing.T) {
	h := Hit{X: 10, Y: 20, TOF: 4}

	var p PositionTOF = h
	require.Equal(t, 10.0, p.XNs())
	require.Equal(t, 20.0, p.YNs())
	require.Equal(t, 4*T40, p.TOFNs())
}

func TestNeutronImplementsPositionTOF(t *testing.T) {
	n := Neutron{X: 1.5, Y: 2.5, TOF: 100}

	var p PositionTOF = n
	require.Equal(t, 1.5, p.XNs())
	require.Equal(t, 100.0*T40, p.TOFNs())
}

func TestNeutronFitFailed(t *testing.T) {
	cases := []struct {
		name   string
		n      Neutron
		failed bool
	}{
		{"ordinary event", Neutron{X: 10, Y: 20}, false},
		{"negative x sentinel", Neutron{X: -1, Y: -1}, true},
		{"negative y only", Neutron{X: 0, Y: -1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.failed, tc.n.FitFailed())
		})
	}
}

func TestHitBadTOF(t *testing.T) {
	h := Hit{TOF: 700_000} // 17.5 ms at T40

	require.False(t, h.BadTOF(0), "BadTOF should be disabled when pulseRateHz is 0")
	require.True(t, h.BadTOF(60), "BadTOF should flag a hit exceeding the 60Hz pulse period")

	fast := Hit{TOF: 100}
	require.False(t, fast.BadTOF(60), "BadTOF should not flag a hit well within the pulse period")
}
