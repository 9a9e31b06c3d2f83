package signal_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/signal"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
)

// advance 按引擎的顺序推进一步
func advance(s *signal.Signal) {
	s.Update(1)
	s.Prepare()
}

func TestSignalDefaultCycle(t *testing.T) {
	s, err := signal.New(0, signal.DefaultProgram(), 0)
	require.NoError(t, err)
	assert.Equal(t, entity.GREEN, s.Color())
	assert.Equal(t, 11.0, s.RemainingTime())

	// 车辆在第1..25步看到的灯色：绿10步、黄5步、红10步
	for tick := 1; tick <= 25; tick++ {
		advance(s)
		switch {
		case tick <= 10:
			assert.Equal(t, entity.GREEN, s.Color(), "tick %d", tick)
			assert.Equal(t, float64(11-tick), s.RemainingTime(), "tick %d", tick)
		case tick <= 15:
			assert.Equal(t, entity.YELLOW, s.Color(), "tick %d", tick)
		default:
			assert.Equal(t, entity.RED, s.Color(), "tick %d", tick)
		}
	}
	// 一个周期后回到绿灯
	advance(s)
	assert.Equal(t, entity.GREEN, s.Color())
	assert.Equal(t, 10.0, s.RemainingTime())
}

func TestSignalFirstPhaseVisible(t *testing.T) {
	tl := &mapv2.TrafficLight{Phases: []*mapv2.Phase{
		{Duration: 1, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_RED}},
		{Duration: 1, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_GREEN}},
	}}
	s, err := signal.New(0, tl, 0)
	require.NoError(t, err)
	// 时长为1的首个相位在第1步仍可见
	advance(s)
	assert.Equal(t, entity.RED, s.Color())
	s.Update(1)
	// Prepare之前车辆看到的仍是旧灯色
	assert.Equal(t, entity.RED, s.Color())
	s.Prepare()
	assert.Equal(t, entity.GREEN, s.Color())
	advance(s)
	assert.Equal(t, entity.RED, s.Color())
}

func TestSignalOffAndNoProgram(t *testing.T) {
	s, err := signal.New(0, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.GREEN, s.Color())
	assert.Equal(t, mathutil.INF, s.RemainingTime())
	advance(s)
	assert.Equal(t, entity.GREEN, s.Color())

	tl := &mapv2.TrafficLight{Phases: []*mapv2.Phase{
		{Duration: 5, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_RED}},
	}}
	s, err = signal.New(1, tl, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.RED, s.Color())
	s.SetOk(false)
	assert.False(t, s.Ok())
	assert.Equal(t, entity.GREEN, s.Color())
	assert.Equal(t, mathutil.INF, s.RemainingTime())
}

func TestSignalReset(t *testing.T) {
	s, err := signal.New(0, signal.DefaultProgram(), 2)
	require.NoError(t, err)
	assert.Equal(t, entity.RED, s.Color())
	for range 23 {
		advance(s)
	}
	assert.Equal(t, entity.YELLOW, s.Color())
	s.Reset()
	assert.Equal(t, entity.RED, s.Color())
	assert.Equal(t, 11.0, s.RemainingTime())
}

func TestValidateProgram(t *testing.T) {
	assert.ErrorIs(t, signal.ValidateProgram(nil), signal.ErrEmptyProgram)
	assert.ErrorIs(t, signal.ValidateProgram(&mapv2.TrafficLight{}), signal.ErrEmptyProgram)

	bad := []*mapv2.TrafficLight{
		{Phases: []*mapv2.Phase{{Duration: 0, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_RED}}}},
		{Phases: []*mapv2.Phase{{Duration: 3}}},
		{Phases: []*mapv2.Phase{{Duration: 3, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_UNSPECIFIED}}}},
	}
	for _, tl := range bad {
		assert.ErrorIs(t, signal.ValidateProgram(tl), signal.ErrBadPhase)
		_, err := signal.New(0, tl, 0)
		assert.Error(t, err)
	}
}

func TestProgramFromConfig(t *testing.T) {
	tl, err := signal.ProgramFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"GREEN", "YELLOW", "RED"}, signal.ProgramColors(tl))

	tl, err = signal.ProgramFromConfig([]config.Phase{{Color: "red", Duration: 2}, {Color: "Green", Duration: 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"RED", "GREEN"}, signal.ProgramColors(tl))
	assert.Equal(t, 3.0, tl.Phases[1].Duration)

	_, err = signal.ProgramFromConfig([]config.Phase{{Color: "purple", Duration: 2}})
	assert.ErrorIs(t, err, entity.ErrUnknownLight)
	_, err = signal.ProgramFromConfig([]config.Phase{{Color: "red", Duration: 0}})
	assert.ErrorIs(t, err, signal.ErrBadPhase)
}

func TestManagerShared(t *testing.T) {
	cells := []entity.Terrain{entity.STREET, entity.LIGHT, entity.CROSSWALK, entity.LIGHT}
	red := &mapv2.TrafficLight{Phases: []*mapv2.Phase{
		{Duration: 4, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_RED}},
		{Duration: 4, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_GREEN}},
	}}
	m := signal.NewManager()
	require.NoError(t, m.Init(cells, signal.Programs{Crosswalk: red}))

	assert.Len(t, m.Signals(), 2)
	assert.Nil(t, m.SignalAt(0))
	assert.Same(t, m.SignalAt(1), m.SignalAt(3))
	assert.Equal(t, entity.GREEN, m.ColorAt(1))
	assert.Equal(t, entity.RED, m.ColorAt(2))
	// 非信号单元格读取环境灯色
	assert.Equal(t, m.ColorAt(1), m.ColorAt(0))
	assert.Equal(t, []entity.Light{entity.GREEN, entity.RED}, m.Colors())

	for range 4 {
		m.Update(1)
		m.Prepare()
	}
	assert.Equal(t, entity.RED, m.ColorAt(2))
	assert.Equal(t, 1.0, m.RemainingAt(2))
	m.Update(1)
	m.Prepare()
	assert.Equal(t, entity.GREEN, m.ColorAt(2))
	assert.Equal(t, 4.0, m.RemainingAt(2))
	m.Reset()
	assert.Equal(t, entity.RED, m.ColorAt(2))
}

func TestManagerPerCell(t *testing.T) {
	cells := []entity.Terrain{entity.LIGHT, entity.LIGHT, entity.GRASS, entity.LIGHT, entity.CROSSWALK}
	m := signal.NewManager()
	require.NoError(t, m.Init(cells, signal.Programs{PerCell: true}))

	// 环境信号灯 + 每个信号单元格一个
	assert.Len(t, m.Signals(), 5)
	assert.NotSame(t, m.SignalAt(0), m.SignalAt(1))
	assert.Equal(t, entity.GREEN, m.ColorAt(0))
	assert.Equal(t, entity.YELLOW, m.ColorAt(1))
	assert.Equal(t, entity.RED, m.ColorAt(3))
	assert.Equal(t, entity.GREEN, m.ColorAt(4))
}

func TestManagerBadProgram(t *testing.T) {
	m := signal.NewManager()
	err := m.Init([]entity.Terrain{entity.LIGHT}, signal.Programs{Traffic: &mapv2.TrafficLight{}})
	assert.ErrorIs(t, err, signal.ErrEmptyProgram)
}

func TestManagerDisabled(t *testing.T) {
	cells := []entity.Terrain{entity.LIGHT, entity.CROSSWALK, entity.STREET}
	red := &mapv2.TrafficLight{Phases: []*mapv2.Phase{
		{Duration: 4, States: []mapv2.LightState{mapv2.LightState_LIGHT_STATE_RED}},
	}}
	m := signal.NewManager()
	require.NoError(t, m.Init(cells, signal.Programs{Traffic: red, Crosswalk: red, Disabled: true}))
	for i := range cells {
		assert.Equal(t, entity.GREEN, m.ColorAt(i))
		assert.Equal(t, mathutil.INF, m.RemainingAt(i))
	}
	for _, s := range m.Signals() {
		assert.False(t, s.Ok())
	}
}
