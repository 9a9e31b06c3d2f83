package engine

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/signal"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/randengine"
)

// Options 引擎选项
type Options struct {
	Programs signal.Programs // 信号灯程序
	Seed     uint64          // 随机数种子
}

// Stats 累计统计
type Stats struct {
	Moves      int64 `json:"moves"`      // 成功移动次数
	Collisions int64 `json:"collisions"` // 同格相遇的车辆对数
	Deaths     int64 `json:"deaths"`     // 因碰撞死亡的车辆数
}

type subscriber struct {
	id int
	fn func(*Snapshot)
}

// Engine 模拟引擎
// 功能：独占地形网格、车辆集合与信号灯，按步推进模拟
// 说明：单线程使用，Step/Reset之间不可并发；并发访问由调用方串行化
type Engine struct {
	grid     *Grid
	vehicles entity.IVehicleManager
	signals  entity.ISignalManager
	rng      *randengine.Engine

	tick  int64
	stats Stats

	subscribers []subscriber
	nextSubID   int
}

// New 创建模拟引擎
// 功能：校验地形与车辆并构建引擎，任何错误都不会得到部分构建的引擎
// 参数：rows-按行排列的地形，descs-按加载顺序排列的车辆描述，opts-选项
// 返回：引擎实例或加载错误
// 算法说明：
// 1. 构建环面网格（尺寸与矩形校验）
// 2. 创建车辆（坐标非负校验）并检查是否落在网格内
// 3. 为信号单元格建立信号灯
func New(rows [][]entity.Terrain, descs []vehicle.Descriptor, opts Options) (*Engine, error) {
	grid, err := NewGrid(rows)
	if err != nil {
		return nil, err
	}
	vehicleManager := vehicle.NewManager()
	if err := vehicleManager.Init(descs); err != nil {
		return nil, err
	}
	for _, v := range vehicleManager.Vehicles() {
		if !grid.Contains(v.X(), v.Y()) {
			return nil, fmt.Errorf("%w: vehicle #%d %v at (%d, %d) in %dx%d grid",
				ErrOutOfBounds, v.ID(), v.Kind(), v.X(), v.Y(), grid.Width(), grid.Height())
		}
	}
	signalManager := signal.NewManager()
	if err := signalManager.Init(grid.cells, opts.Programs); err != nil {
		return nil, err
	}
	e := &Engine{
		grid:     grid,
		vehicles: vehicleManager,
		signals:  signalManager,
		rng:      randengine.New(opts.Seed),
	}
	log.Infof("engine ready: %dx%d grid, %d vehicles, seed %d",
		grid.Width(), grid.Height(), len(descs), e.rng.InitialSeed())
	return e, nil
}

// Step 推进一步
// 算法说明：
// 1. 信号灯推进相位并写入snapshot（先于任何车辆的通行判断）
// 2. 按加载顺序处理车辆：存活则选择朝向、校验通行并移动；死亡则Poke一次
// 3. 所有车辆移动完成后处理碰撞
// 4. 通知订阅者
func (e *Engine) Step() {
	e.tick++
	e.signals.Update(1)
	e.signals.Prepare()

	for _, v := range e.vehicles.Data() {
		if !v.Alive() {
			v.Poke()
			continue
		}
		e.move(v)
	}
	e.resolveCollisions()
	log.Debugf("tick %d complete: %+v", e.tick, e.stats)
	e.publish()
}

// move 单辆车的转向与移动
// 说明：目标单元格不可通行时原地不动，保持原朝向
func (e *Engine) move(v entity.IVehicle) {
	x, y := v.X(), v.Y()
	d := v.ChooseDirection(e.grid.Neighbors(x, y), e.rng)
	nx, ny := e.grid.Next(x, y, d)
	index := e.grid.Index(nx, ny)
	if !v.CanPass(e.grid.cells[index], e.signals.ColorAt(index)) {
		return
	}
	v.SetPosition(nx, ny)
	v.SetHeading(d)
	e.stats.Moves++
}

// peer 碰撞开始前的车辆状态
type peer struct {
	alive     bool
	deathTime int
}

func (p peer) Alive() bool    { return p.alive }
func (p peer) DeathTime() int { return p.deathTime }

// resolveCollisions 处理同一单元格中的存活车辆
// 功能：同格的每辆车与其他每辆车互相碰撞
// 说明：对方状态取自碰撞处理前的快照，结果与处理顺序无关
func (e *Engine) resolveCollisions() {
	alive := lo.Filter(e.vehicles.Data(), func(v entity.IVehicle, _ int) bool { return v.Alive() })
	cellOf := func(v entity.IVehicle) int { return e.grid.Index(v.X(), v.Y()) }
	groups := lo.GroupBy(alive, cellOf)
	for _, cell := range lo.Uniq(lo.Map(alive, func(v entity.IVehicle, _ int) int { return cellOf(v) })) {
		group := groups[cell]
		if len(group) < 2 {
			continue
		}
		peers := lo.Map(group, func(v entity.IVehicle, _ int) peer {
			return peer{alive: true, deathTime: v.DeathTime()}
		})
		e.stats.Collisions += int64(len(group) * (len(group) - 1) / 2)
		for i, v := range group {
			for j, p := range peers {
				if i != j {
					v.Collide(p)
				}
			}
			if !v.Alive() {
				e.stats.Deaths++
				log.Debugf("tick %d: %s #%d died at (%d, %d)", e.tick, v.KindName(), v.ID(), v.X(), v.Y())
			}
		}
	}
}

// Reset 所有车辆回到初始位置并复活，信号灯回到初始相位，步数清零
// 说明：不重新加载地形
func (e *Engine) Reset() {
	e.vehicles.Reset()
	e.signals.Reset()
	e.tick = 0
	e.stats = Stats{}
	log.Infof("engine reset")
	e.publish()
}

// Subscribe 订阅每步结束后的快照
// 参数：fn-回调，在Step/Reset内同步调用，不得回调引擎
// 返回：取消订阅函数
func (e *Engine) Subscribe(fn func(*Snapshot)) (cancel func()) {
	id := e.nextSubID
	e.nextSubID++
	e.subscribers = append(e.subscribers, subscriber{id: id, fn: fn})
	return func() {
		e.subscribers = lo.Reject(e.subscribers, func(s subscriber, _ int) bool { return s.id == id })
	}
}

func (e *Engine) publish() {
	if len(e.subscribers) == 0 {
		return
	}
	s := e.Snapshot()
	for _, sub := range e.subscribers {
		sub.fn(s)
	}
}

// Width 列数
func (e *Engine) Width() int { return e.grid.Width() }

// Height 行数
func (e *Engine) Height() int { return e.grid.Height() }

// Terrain 坐标处的地形
func (e *Engine) Terrain(x, y int) entity.Terrain { return e.grid.At(x, y) }

// LightAt 坐标处当前灯色
func (e *Engine) LightAt(x, y int) entity.Light { return e.signals.ColorAt(e.grid.Index(x, y)) }

// Tick 已完成的步数
func (e *Engine) Tick() int64 { return e.tick }

// Stats 累计统计
func (e *Engine) Stats() Stats { return e.stats }

// Vehicle 根据ID获取车辆
func (e *Engine) Vehicle(id int32) (entity.IVehicle, error) {
	return e.vehicles.GetOrError(id)
}
