package signal

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// 信号灯分组
const (
	GroupTraffic   = 0 // LIGHT单元格
	GroupCrosswalk = 1 // CROSSWALK单元格
)

// Programs 两个分组使用的信控程序
type Programs struct {
	Traffic   *mapv2.TrafficLight
	Crosswalk *mapv2.TrafficLight
	PerCell   bool // true时每个信号单元格拥有独立信号灯，按单元格序号错开初始相位
	Disabled  bool // true时所有信号灯关闭（常绿）
}

// Signal管理器
// 功能：维护所有信号灯以及单元格到信号灯的映射
// 说明：非信号单元格读取环境灯色（交通分组的第一个信号灯），该灯色对非信号地形没有影响
type Manager struct {
	signals    []*Signal
	cellSignal []int32 // 单元格下标 -> 信号灯下标，-1表示非信号单元格
	ambient    *Signal
}

// NewManager 创建Signal管理器实例
func NewManager() *Manager {
	return &Manager{
		signals:    make([]*Signal, 0),
		cellSignal: make([]int32, 0),
	}
}

// Init 根据地形初始化所有信号灯
// 功能：为LIGHT与CROSSWALK单元格建立信号灯映射
// 参数：cells-按行优先排列的地形，programs-各分组程序
// 返回：程序不合法时返回错误
// 算法说明：
// 1. 共享模式：每个分组一个信号灯，所有同组单元格共用
// 2. 独立模式：每个信号单元格一个信号灯，初始相位为同组内序号对相位数取模
// 3. 始终保证存在环境信号灯（交通分组）
func (m *Manager) Init(cells []entity.Terrain, programs Programs) error {
	if programs.Traffic == nil {
		programs.Traffic = DefaultProgram()
	}
	if programs.Crosswalk == nil {
		programs.Crosswalk = DefaultProgram()
	}
	groupProgram := map[entity.Terrain]*mapv2.TrafficLight{
		entity.LIGHT:     programs.Traffic,
		entity.CROSSWALK: programs.Crosswalk,
	}

	signals := make([]*Signal, 0)
	newSignal := func(tl *mapv2.TrafficLight, offset int32) (int32, error) {
		id := int32(len(signals))
		s, err := New(id, tl, offset)
		if err != nil {
			return -1, err
		}
		signals = append(signals, s)
		return id, nil
	}

	// 共享模式下的分组信号灯，交通分组同时作为环境信号灯
	ambientID, err := newSignal(programs.Traffic, 0)
	if err != nil {
		return fmt.Errorf("traffic program: %w", err)
	}
	shared := map[entity.Terrain]int32{entity.LIGHT: ambientID}
	if !programs.PerCell {
		crosswalkID, err := newSignal(programs.Crosswalk, 0)
		if err != nil {
			return fmt.Errorf("crosswalk program: %w", err)
		}
		shared[entity.CROSSWALK] = crosswalkID
	}

	ordinal := map[entity.Terrain]int32{}
	cellSignal := make([]int32, len(cells))
	for i, t := range cells {
		if !t.HasSignal() {
			cellSignal[i] = -1
			continue
		}
		if !programs.PerCell {
			cellSignal[i] = shared[t]
			continue
		}
		id, err := newSignal(groupProgram[t], ordinal[t])
		if err != nil {
			return fmt.Errorf("%v cell %d: %w", t, i, err)
		}
		ordinal[t]++
		cellSignal[i] = id
	}

	for _, s := range signals {
		s.SetOk(!programs.Disabled)
	}
	m.signals = signals
	m.cellSignal = cellSignal
	m.ambient = signals[ambientID]
	log.Debugf("init %d signals, %d enabled (per cell: %v, traffic: %v, crosswalk: %v)",
		len(m.signals), lo.CountBy(m.signals, (*Signal).Ok), programs.PerCell,
		ProgramColors(programs.Traffic), ProgramColors(programs.Crosswalk))
	return nil
}

// ColorAt 单元格当前灯色
// 参数：index-单元格下标（行优先）
// 返回：信号单元格返回其信号灯灯色，否则返回环境灯色
func (m *Manager) ColorAt(index int) entity.Light {
	if id := m.cellSignal[index]; id >= 0 {
		return m.signals[id].Color()
	}
	return m.ambient.Color()
}

// RemainingAt 单元格当前灯色还会保持的步数，规则同ColorAt
func (m *Manager) RemainingAt(index int) float64 {
	if id := m.cellSignal[index]; id >= 0 {
		return m.signals[id].RemainingTime()
	}
	return m.ambient.RemainingTime()
}

// SignalAt 单元格对应的信号灯，非信号单元格返回nil
func (m *Manager) SignalAt(index int) *Signal {
	if id := m.cellSignal[index]; id >= 0 {
		return m.signals[id]
	}
	return nil
}

// Colors 所有信号灯当前灯色，按信号灯编号排列
func (m *Manager) Colors() []entity.Light {
	return lo.Map(m.signals, func(s *Signal, _ int) entity.Light { return s.Color() })
}

// Signals 所有信号灯
func (m *Manager) Signals() []*Signal {
	return m.signals
}

// Prepare 准备阶段，所有信号灯写入snapshot
func (m *Manager) Prepare() {
	for _, s := range m.signals {
		s.Prepare()
	}
}

// Update 更新阶段，所有信号灯推进相位
func (m *Manager) Update(dt float64) {
	for _, s := range m.signals {
		s.Update(dt)
	}
}

// Reset 所有信号灯回到初始相位
func (m *Manager) Reset() {
	for _, s := range m.signals {
		s.Reset()
	}
}
