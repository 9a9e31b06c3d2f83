package engine

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// VehicleView 车辆只读视图
type VehicleView struct {
	ID      int32  `json:"id"`
	Kind    string `json:"kind"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Heading string `json:"heading"`
	Alive   bool   `json:"alive"`
	Counter int    `json:"counter"`
	Image   string `json:"image"` // 显示层图片名
}

// CellLight 信号单元格当前灯色
type CellLight struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Color     string `json:"color"`
	Remaining int    `json:"remaining"` // 当前灯色还会保持的步数（含本步），-1表示常绿
}

// Snapshot 一步结束后的模拟状态
// 说明：每次新建，持有者不得修改
type Snapshot struct {
	Tick     int64         `json:"tick"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Rows     []string      `json:"rows"` // 地形编码，按行排列
	Lights   []CellLight   `json:"lights"`
	Vehicles []VehicleView `json:"vehicles"`
	Stats    Stats         `json:"stats"`
}

func newVehicleView(v entity.IVehicle) VehicleView {
	return VehicleView{
		ID:      v.ID(),
		Kind:    v.KindName(),
		X:       v.X(),
		Y:       v.Y(),
		Heading: v.Heading().String(),
		Alive:   v.Alive(),
		Counter: v.Counter(),
		Image:   v.ImageName(),
	}
}

// Vehicles 车辆只读视图，按加载顺序
func (e *Engine) Vehicles() []VehicleView {
	return lo.Map(e.vehicles.Data(), func(v entity.IVehicle, _ int) VehicleView {
		return newVehicleView(v)
	})
}

// Snapshot 生成当前状态快照
func (e *Engine) Snapshot() *Snapshot {
	lights := make([]CellLight, 0)
	for i, t := range e.grid.cells {
		if t.HasSignal() {
			lights = append(lights, CellLight{
				X:         i % e.grid.width,
				Y:         i / e.grid.width,
				Color:     e.signals.ColorAt(i).String(),
				Remaining: remainingTicks(e.signals.RemainingAt(i)),
			})
		}
	}
	return &Snapshot{
		Tick:     e.tick,
		Width:    e.grid.width,
		Height:   e.grid.height,
		Rows:     e.grid.Rows(),
		Lights:   lights,
		Vehicles: e.Vehicles(),
		Stats:    e.stats,
	}
}

func remainingTicks(t float64) int {
	if t >= mathutil.INF {
		return -1
	}
	return int(math.Ceil(t))
}

// Terrain 快照中坐标处的地形
func (s *Snapshot) Terrain(x, y int) entity.Terrain {
	t, err := entity.ParseTerrain(s.Rows[y][x])
	if err != nil {
		log.Panicf("snapshot holds invalid terrain: %v", err)
	}
	return t
}

// ToMap 转换为通用结构，供RPC的google.protobuf.Struct使用
func (s *Snapshot) ToMap() map[string]any {
	return map[string]any{
		"tick":   s.Tick,
		"width":  s.Width,
		"height": s.Height,
		"rows":   lo.Map(s.Rows, func(r string, _ int) any { return r }),
		"lights": lo.Map(s.Lights, func(l CellLight, _ int) any {
			return map[string]any{"x": l.X, "y": l.Y, "color": l.Color, "remaining": l.Remaining}
		}),
		"vehicles": lo.Map(s.Vehicles, func(v VehicleView, _ int) any {
			return map[string]any{
				"id":      v.ID,
				"kind":    v.Kind,
				"x":       v.X,
				"y":       v.Y,
				"heading": v.Heading,
				"alive":   v.Alive,
				"counter": v.Counter,
				"image":   v.Image,
			}
		}),
		"stats": map[string]any{
			"moves":      s.Stats.Moves,
			"collisions": s.Stats.Collisions,
			"deaths":     s.Stats.Deaths,
		},
	}
}
