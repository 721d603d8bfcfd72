package anomaly

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/generator"
)

func newEngine(phase domain.Phase) *generator.Generator {
	g := generator.New(generator.WithNoise(0), generator.WithRand(rand.New(rand.NewPCG(1, 1))))
	s := domain.NewSample()
	s.Phase = phase
	if phase == domain.PhaseStable {
		s.PrevPhase = domain.PhaseStarting
		s.N1Left, s.N1Right = 98, 98
		s.EGTLeft, s.EGTRight = 700, 700
		s.FuelFlow = 40
	}
	if phase == domain.PhaseStarting {
		s.N1Left, s.N1Right = 40, 40
		s.FuelFlow = 8
	}
	g.Overwrite(s)
	return g
}

func TestSpoolCautionWhileStableDoesNotStop(t *testing.T) {
	eng := newEngine(domain.PhaseStable)
	s := eng.Sample()
	s.N1Left, s.N1Right = 110, 110
	eng.Overwrite(s)

	var st domain.AnomalyState
	res := New(DefaultThresholds()).Apply(eng, &st)

	assert.Equal(t, SpoolCaution, st.SpoolOverspeedLevel)
	assert.False(t, res.Shutdown)
	assert.Equal(t, domain.PhaseStable, eng.Phase())
}

func TestSpoolCriticalStopsEngine(t *testing.T) {
	eng := newEngine(domain.PhaseStable)
	s := eng.Sample()
	s.N1Left, s.N1Right = 124, 124
	eng.Overwrite(s)

	var st domain.AnomalyState
	res := New(DefaultThresholds()).Apply(eng, &st)

	assert.Equal(t, SpoolCritical, st.SpoolOverspeedLevel)
	require.True(t, res.Shutdown)
	assert.Equal(t, []string{"spool_overspeed"}, res.Reasons)
	assert.Equal(t, domain.PhaseStopping, eng.Phase())
	assert.Equal(t, domain.PhaseStable, eng.Sample().PrevPhase)
}

func TestCriticalReentryIsNoop(t *testing.T) {
	ev := New(DefaultThresholds())
	s := domain.NewSample()
	s.Phase = domain.PhaseStable
	s.N1Left = 125

	first := ev.Evaluate(s, domain.AnomalyState{})
	require.True(t, first.Shutdown)
	second := ev.Evaluate(s, first.State)
	assert.False(t, second.Shutdown)
	assert.Equal(t, SpoolCritical, second.State.SpoolOverspeedLevel)
}

func TestSpoolLadderFallsBack(t *testing.T) {
	ev := New(DefaultThresholds())
	s := domain.NewSample()
	s.Phase = domain.PhaseStable
	s.N1Left, s.N1Right = 100, 106

	st := ev.Evaluate(s, domain.AnomalyState{}).State
	assert.Equal(t, SpoolCaution, st.SpoolOverspeedLevel)

	s.N1Right = 105
	st = ev.Evaluate(s, st).State
	assert.Equal(t, LevelClear, st.SpoolOverspeedLevel)
}

func TestEGTLadderFollowsRegime(t *testing.T) {
	ev := New(DefaultThresholds())
	cases := []struct {
		name      string
		phase     domain.Phase
		prevPhase domain.Phase
		egt       float64
		prevLevel int
		want      int
		shutdown  bool
	}{
		{"starting clear", domain.PhaseStarting, domain.PhaseIdle, 850, 0, LevelClear, false},
		{"starting caution", domain.PhaseStarting, domain.PhaseIdle, 851, 0, EGTStartCaution, false},
		{"starting critical", domain.PhaseStarting, domain.PhaseIdle, 1001, 0, EGTStartCritical, true},
		{"stable below caution", domain.PhaseStable, domain.PhaseStarting, 900, 0, LevelClear, false},
		{"stable caution", domain.PhaseStable, domain.PhaseStarting, 951, 0, EGTStableCaution, false},
		{"stable critical", domain.PhaseStable, domain.PhaseStarting, 1101, 0, EGTStableCritical, true},
		{"stopping from starting", domain.PhaseStopping, domain.PhaseStarting, 900, 0, EGTStartCaution, false},
		{"stopping from stable", domain.PhaseStopping, domain.PhaseStable, 900, 3, LevelClear, false},
		{"idle keeps level", domain.PhaseIdle, domain.PhaseIdle, 2000, 3, EGTStableCaution, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := domain.NewSample()
			s.Phase, s.PrevPhase = tc.phase, tc.prevPhase
			s.EGTRight = tc.egt
			res := ev.Evaluate(s, domain.AnomalyState{EGTOvertempLevel: tc.prevLevel})
			assert.Equal(t, tc.want, res.State.EGTOvertempLevel)
			assert.Equal(t, tc.shutdown, res.Shutdown)
		})
	}
}

func TestFuelFlags(t *testing.T) {
	ev := New(DefaultThresholds())
	s := domain.NewSample()
	s.FuelFlow = 50
	s.FuelLevel = 1000
	st := ev.Evaluate(s, domain.AnomalyState{}).State
	assert.False(t, st.FuelFlowOverspeed)
	assert.False(t, st.LowFuel)

	s.FuelFlow = 50.1
	s.FuelLevel = 999.9
	st = ev.Evaluate(s, st).State
	assert.True(t, st.FuelFlowOverspeed)
	assert.True(t, st.LowFuel)
}

func TestSensorSeverity(t *testing.T) {
	var st domain.AnomalyState
	assert.Equal(t, domain.SeverityNormal, SensorSeverity(st, domain.SensorSpool, domain.SideLeft))

	st.SpoolFail[domain.SideLeft][1] = true
	assert.Equal(t, domain.SeverityInfo, SensorSeverity(st, domain.SensorSpool, domain.SideLeft))
	assert.Equal(t, domain.SeverityNormal, SensorSeverity(st, domain.SensorSpool, domain.SideRight))

	st.SpoolFail[domain.SideLeft][0] = true
	assert.Equal(t, domain.SeverityCaution, SensorSeverity(st, domain.SensorSpool, domain.SideLeft))
	assert.Equal(t, domain.SeverityNormal, SensorSeverity(st, domain.SensorEGT, domain.SideLeft))

	st.SpoolFail[domain.SideRight] = [2]bool{true, true}
	assert.Equal(t, domain.SeverityCritical, SensorSeverity(st, domain.SensorSpool, domain.SideRight))
}

func TestToggleSensorFailShutsDownWhenAllFail(t *testing.T) {
	ev := New(DefaultThresholds())
	eng := newEngine(domain.PhaseStable)
	var st domain.AnomalyState

	_, ok := ev.ToggleSensorFail(eng, &st, domain.SensorEGT, domain.SideLeft, 2)
	assert.False(t, ok)

	for _, side := range []domain.Side{domain.SideLeft, domain.SideRight} {
		for i := 0; i < domain.SensorsPerSide; i++ {
			res, ok := ev.ToggleSensorFail(eng, &st, domain.SensorEGT, side, i)
			require.True(t, ok)
			last := side == domain.SideRight && i == domain.SensorsPerSide-1
			assert.Equal(t, last, res.Shutdown)
		}
	}
	assert.True(t, st.EGTFail.AllFailed())
	assert.Equal(t, domain.PhaseStopping, eng.Phase())

	_, ok = ev.ToggleSensorFail(eng, &st, domain.SensorEGT, domain.SideLeft, 0)
	require.True(t, ok)
	assert.False(t, st.EGTFail[domain.SideLeft][0])
}

func TestToggleSensorGroup(t *testing.T) {
	ev := New(DefaultThresholds())
	eng := newEngine(domain.PhaseStable)
	var st domain.AnomalyState
	st.SpoolFail[domain.SideLeft][0] = true

	res, ok := ev.ToggleSensorGroup(eng, &st, domain.SensorSpool)
	require.True(t, ok)
	assert.True(t, res.Shutdown)
	assert.True(t, st.SpoolFail.AllFailed())

	res, _ = ev.ToggleSensorGroup(eng, &st, domain.SensorSpool)
	assert.False(t, res.Shutdown)
	assert.Equal(t, domain.SensorBank{}, st.SpoolFail)
}

func TestFuelTogglesShiftFuelLevel(t *testing.T) {
	ev := New(DefaultThresholds())
	eng := newEngine(domain.PhaseStable)
	var st domain.AnomalyState

	ev.ToggleLowFuel(eng, &st)
	assert.InDelta(t, domain.MaxFuel-FuelFaultOffset, eng.Sample().FuelLevel, 1e-9)
	assert.True(t, st.LowFuel)

	ev.ToggleLowFuel(eng, &st)
	assert.InDelta(t, domain.MaxFuel, eng.Sample().FuelLevel, 1e-9)
	assert.False(t, st.LowFuel)

	ev.ToggleFuelSensorFail(eng, &st)
	assert.True(t, st.FuelSensorFail)
	assert.True(t, st.LowFuel)
	ev.ToggleFuelSensorFail(eng, &st)
	assert.False(t, st.FuelSensorFail)
	assert.InDelta(t, domain.MaxFuel, eng.Sample().FuelLevel, 1e-9)
}

func TestForceSpoolOverspeedIsPhaseGated(t *testing.T) {
	ev := New(DefaultThresholds())
	var st domain.AnomalyState

	idle := newEngine(domain.PhaseIdle)
	_, ok := ev.ForceSpoolOverspeed(idle, &st, SpoolCaution)
	assert.False(t, ok)

	eng := newEngine(domain.PhaseStarting)
	res, ok := ev.ForceSpoolOverspeed(eng, &st, SpoolCaution)
	require.True(t, ok)
	assert.False(t, res.Shutdown)
	assert.Equal(t, domain.PhaseStable, eng.Phase())
	assert.Equal(t, 110.0, eng.Sample().N1Left)
	assert.Equal(t, SpoolCaution, st.SpoolOverspeedLevel)

	// A second press restores normal speed.
	_, ok = ev.ForceSpoolOverspeed(eng, &st, SpoolCaution)
	require.True(t, ok)
	assert.Equal(t, 100.0, eng.Sample().N1Right)
	assert.Equal(t, LevelClear, st.SpoolOverspeedLevel)

	res, ok = ev.ForceSpoolOverspeed(eng, &st, SpoolCritical)
	require.True(t, ok)
	assert.True(t, res.Shutdown)
	assert.Equal(t, domain.PhaseStopping, eng.Phase())

	_, ok = ev.ForceSpoolOverspeed(eng, &st, SpoolCritical)
	assert.False(t, ok)
}

func TestForceEGTOvertemp(t *testing.T) {
	ev := New(DefaultThresholds())

	t.Run("start caution toggles offset", func(t *testing.T) {
		eng := newEngine(domain.PhaseStarting)
		var st domain.AnomalyState
		_, ok := ev.ForceEGTOvertemp(eng, &st, EGTStartCaution)
		require.True(t, ok)
		assert.True(t, eng.Sample().StartOvertemp)
		assert.Equal(t, domain.AmbientTemp+840, eng.Sample().EGTLeft)
		assert.Equal(t, EGTStartCaution, st.EGTOvertempLevel)

		_, ok = ev.ForceEGTOvertemp(eng, &st, EGTStartCaution)
		require.True(t, ok)
		assert.False(t, eng.Sample().StartOvertemp)
		assert.Equal(t, domain.AmbientTemp, eng.Sample().EGTLeft)
		assert.Equal(t, LevelClear, st.EGTOvertempLevel)
	})

	t.Run("start critical", func(t *testing.T) {
		eng := newEngine(domain.PhaseStarting)
		var st domain.AnomalyState
		res, ok := ev.ForceEGTOvertemp(eng, &st, EGTStartCritical)
		require.True(t, ok)
		assert.True(t, res.Shutdown)
		assert.Equal(t, EGTStartCritical, st.EGTOvertempLevel)
		assert.Equal(t, domain.PhaseStopping, eng.Phase())
	})

	t.Run("stable levels rejected while starting", func(t *testing.T) {
		eng := newEngine(domain.PhaseStarting)
		var st domain.AnomalyState
		_, ok := ev.ForceEGTOvertemp(eng, &st, EGTStableCaution)
		assert.False(t, ok)
		_, ok = ev.ForceEGTOvertemp(eng, &st, EGTStableCritical)
		assert.False(t, ok)
	})

	t.Run("stable caution toggles", func(t *testing.T) {
		eng := newEngine(domain.PhaseStable)
		var st domain.AnomalyState
		_, ok := ev.ForceEGTOvertemp(eng, &st, EGTStableCaution)
		require.True(t, ok)
		assert.Equal(t, EGTStableCaution, st.EGTOvertempLevel)
		_, ok = ev.ForceEGTOvertemp(eng, &st, EGTStableCaution)
		require.True(t, ok)
		assert.Equal(t, 720.0, eng.Sample().EGTRight)
		assert.Equal(t, LevelClear, st.EGTOvertempLevel)
	})

	t.Run("stable critical", func(t *testing.T) {
		eng := newEngine(domain.PhaseStable)
		var st domain.AnomalyState
		res, ok := ev.ForceEGTOvertemp(eng, &st, EGTStableCritical)
		require.True(t, ok)
		assert.True(t, res.Shutdown)
		assert.Equal(t, EGTStableCritical, st.EGTOvertempLevel)
	})

	t.Run("unknown level", func(t *testing.T) {
		eng := newEngine(domain.PhaseStable)
		var st domain.AnomalyState
		_, ok := ev.ForceEGTOvertemp(eng, &st, 7)
		assert.False(t, ok)
	})
}

func TestForceFuelFlowOverspeed(t *testing.T) {
	ev := New(DefaultThresholds())
	var st domain.AnomalyState

	_, ok := ev.ForceFuelFlowOverspeed(newEngine(domain.PhaseStarting), &st)
	assert.False(t, ok)

	eng := newEngine(domain.PhaseStable)
	_, ok = ev.ForceFuelFlowOverspeed(eng, &st)
	require.True(t, ok)
	assert.Equal(t, 60.0, eng.Sample().FuelFlow)
	assert.True(t, st.FuelFlowOverspeed)

	_, ok = ev.ForceFuelFlowOverspeed(eng, &st)
	require.True(t, ok)
	assert.Equal(t, 40.0, eng.Sample().FuelFlow)
	assert.False(t, st.FuelFlowOverspeed)
}
