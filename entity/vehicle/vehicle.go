package vehicle

import (
	"fmt"
	"strings"

	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// Descriptor 地图加载得到的车辆描述
type Descriptor struct {
	Kind    Kind
	X       int
	Y       int
	Heading entity.Direction
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%c %d %d %c", d.Kind.Code(), d.X, d.Y, d.Heading.Code())
}

// Vehicle 网格上的车辆（含行人）
// 功能：保存位置、朝向、死亡计时等运行时状态，按Kind分派通行与转向策略
// 说明：counter==0表示存活；counter只会被Collide置为deathTime，只会被Poke递减
type Vehicle struct {
	id        int32
	kind      Kind
	x, y      int
	heading   entity.Direction
	deathTime int
	counter   int
	iniX      int
	iniY      int

	wait int // 出租车在红灯人行横道前的连续等待步数
}

// New 创建车辆
// 参数：id-加载顺序编号，kind-车辆类型，x/y-初始坐标，heading-初始朝向
// 返回：车辆实例，坐标为负或类型未知时返回错误
func New(id int32, kind Kind, x, y int, heading entity.Direction) (*Vehicle, error) {
	if kind < 0 || int(kind) >= len(policies) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("%w: %s at (%d, %d)", ErrNegativeCoord, kind, x, y)
	}
	return &Vehicle{
		id:        id,
		kind:      kind,
		x:         x,
		y:         y,
		heading:   heading,
		deathTime: kind.DeathTime(),
		iniX:      x,
		iniY:      y,
	}, nil
}

// NewFromDescriptor 根据地图描述创建车辆
func NewFromDescriptor(id int32, d Descriptor) (*Vehicle, error) {
	return New(id, d.Kind, d.X, d.Y, d.Heading)
}

func (v *Vehicle) ID() int32 { return v.id }
func (v *Vehicle) Kind() Kind { return v.kind }
func (v *Vehicle) KindName() string { return policies[v.kind].name }
func (v *Vehicle) X() int { return v.x }
func (v *Vehicle) Y() int { return v.y }
func (v *Vehicle) Heading() entity.Direction { return v.heading }
func (v *Vehicle) DeathTime() int { return v.deathTime }
func (v *Vehicle) Counter() int { return v.counter }
func (v *Vehicle) Alive() bool { return v.counter == 0 }

// Wait 出租车当前连续等待步数，其他类型恒为0
func (v *Vehicle) Wait() int { return v.wait }

// SetPosition 更新位置，由引擎在通行校验通过后调用
func (v *Vehicle) SetPosition(x, y int) {
	v.x, v.y = x, y
}

// SetHeading 更新朝向
func (v *Vehicle) SetHeading(d entity.Direction) {
	v.heading = d
}

// CanPass 判断车辆能否在给定灯色下进入给定地形
// 说明：出租车会在此累计红灯人行横道前的等待步数
func (v *Vehicle) CanPass(t entity.Terrain, l entity.Light) bool {
	return policies[v.kind].canPass(v, t, l)
}

// ChooseDirection 根据四周地形选择本步尝试的朝向
// 参数：n-四个朝向的相邻地形，rng-随机数来源
// 返回：选择的朝向，只有在没有其他合法朝向时才会掉头
func (v *Vehicle) ChooseDirection(n entity.Neighbors, rng entity.Rand) entity.Direction {
	return policies[v.kind].choose(v, n, rng)
}

// Collide 与同一单元格中的另一辆车碰撞
// 功能：双方均存活时，死亡时间严格更大的一方死亡，相等时均不死亡
func (v *Vehicle) Collide(other entity.Peer) {
	if v.Alive() && other.Alive() && v.deathTime > other.DeathTime() {
		v.counter = v.deathTime
	}
}

// Poke 死亡计时减一，最小为0（复活）
func (v *Vehicle) Poke() {
	if v.counter > 0 {
		v.counter--
	}
}

// Reset 回到初始位置并复活，朝向保持不变
func (v *Vehicle) Reset() {
	v.counter = 0
	v.wait = 0
	v.x, v.y = v.iniX, v.iniY
}

// ImageName 显示层使用的图片名，例如car.gif、car_dead.gif
func (v *Vehicle) ImageName() string {
	var sb strings.Builder
	sb.WriteString(v.KindName())
	if !v.Alive() {
		sb.WriteString("_dead")
	}
	sb.WriteString(".gif")
	return sb.String()
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{ID=%d, Kind=%v, X=%d, Y=%d, Heading=%v, Counter=%d}",
		v.id, v.kind, v.x, v.y, v.heading, v.counter)
}
