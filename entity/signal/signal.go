package signal

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

var (
	ErrEmptyProgram = errors.New("signal program has no phase")
	ErrBadPhase     = errors.New("invalid signal phase")
)

// signalRuntime 信号灯运行时数据结构
// 功能：存储信号灯的程序、相位索引与时间控制
type signalRuntime struct {
	tl           *mapv2.TrafficLight
	step         int32
	totalT       float64
	remainingT   float64
	currentColor entity.Light
}

// Signal 固定相位信号灯
// 功能：按照程序中的相位顺序与时长循环切换灯色，与车辆位置无关
// 说明：每个相位只有一个灯色，时长单位为步（tick）
type Signal struct {
	id int32

	initial  signalRuntime // 初始状态，用于Reset
	snapshot signalRuntime // snapshot，车辆在本步读取的数据
	runtime  signalRuntime // 运行时数据
	ok       bool          // 信号灯状态，true为开启，false为关闭（常绿）
}

// ValidateProgram 检查信控程序是否合法
// 功能：至少一个相位，每个相位恰好一个合法灯色且时长为正
func ValidateProgram(tl *mapv2.TrafficLight) error {
	if tl == nil || len(tl.Phases) == 0 {
		return ErrEmptyProgram
	}
	for i, p := range tl.Phases {
		if len(p.States) != 1 {
			return fmt.Errorf("%w: phase %d has %d states, want 1", ErrBadPhase, i, len(p.States))
		}
		if _, err := entity.LightFromPb(p.States[0]); err != nil {
			return fmt.Errorf("%w: phase %d: %v", ErrBadPhase, i, err)
		}
		if p.Duration <= 0 {
			return fmt.Errorf("%w: phase %d duration %v <= 0", ErrBadPhase, i, p.Duration)
		}
	}
	return nil
}

// New 创建信号灯
// 参数：id-信号灯编号，tl-信控程序（nil表示无信控，常绿），offset-初始相位偏移
// 返回：信号灯实例，程序不合法时返回错误
func New(id int32, tl *mapv2.TrafficLight, offset int32) (*Signal, error) {
	s := &Signal{id: id, ok: true}
	if tl != nil {
		if err := ValidateProgram(tl); err != nil {
			return nil, fmt.Errorf("signal %d: %w", id, err)
		}
		phaseIndex := offset % int32(len(tl.Phases))
		if phaseIndex < 0 {
			phaseIndex += int32(len(tl.Phases))
		}
		d := tl.Phases[phaseIndex].Duration
		// 第0步的状态不参与通行判断，初始相位多留一步，每个相位都恰好被车辆看到d步
		s.initial = signalRuntime{tl: tl, step: phaseIndex, totalT: d, remainingT: d + 1}
	}
	s.initial.currentColor = s.initial.color()
	s.runtime = s.initial
	s.snapshot = s.initial
	return s, nil
}

// color 当前相位的灯色，无程序时为绿灯
func (r *signalRuntime) color() entity.Light {
	if r.tl == nil {
		return entity.GREEN
	}
	l, err := entity.LightFromPb(r.tl.Phases[r.step].States[0])
	if err != nil {
		// 程序已在New中校验
		log.Panicf("signal: %v", err)
	}
	return l
}

// Prepare 准备阶段，将运行时数据写入snapshot
func (s *Signal) Prepare() {
	s.snapshot = s.runtime
}

// Update 更新阶段，按程序推进相位
// 参数：dt-时间步长（步）
// 算法说明：
// 1. 当前相位剩余时间减去dt
// 2. 剩余时间耗尽时依次切换到下一个相位（循环），直到剩余时间为正
func (s *Signal) Update(dt float64) {
	if s.runtime.tl == nil {
		return
	}
	s.runtime.remainingT -= dt
	if s.runtime.remainingT <= 0 {
		s.runtime.remainingT = 0
		s.runtime.totalT = 0
		for {
			s.runtime.step = (s.runtime.step + 1) % int32(len(s.runtime.tl.Phases))
			s.runtime.remainingT += s.runtime.tl.Phases[s.runtime.step].Duration
			if s.runtime.remainingT > 0 {
				s.runtime.totalT = s.runtime.remainingT
				break
			}
		}
		s.runtime.currentColor = s.runtime.color()
	}
}

// Reset 回到初始相位
func (s *Signal) Reset() {
	s.runtime = s.initial
	s.snapshot = s.initial
}

// ID 信号灯编号
func (s *Signal) ID() int32 {
	return s.id
}

// Color 本步车辆看到的灯色
// 说明：无程序或信号灯关闭时为绿灯
func (s *Signal) Color() entity.Light {
	if !s.ok {
		return entity.GREEN
	}
	return s.snapshot.currentColor
}

// RemainingTime 当前灯色还会保持的步数（含本步），无信控或关闭时为无穷大
func (s *Signal) RemainingTime() float64 {
	if s.snapshot.tl == nil || !s.ok {
		return mathutil.INF
	}
	return s.snapshot.remainingT
}

// SetOk 设置信号灯开关状态，false表示失效（常绿）
func (s *Signal) SetOk(ok bool) {
	s.ok = ok
}

// Ok 获取信号灯开关状态
func (s *Signal) Ok() bool {
	return s.ok
}
