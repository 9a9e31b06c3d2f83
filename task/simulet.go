package task

import (
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
)

const (
	SelfName = "roadrage" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并输出心跳日志
func (ctx *Context) prepare() {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	ctx.advanceClock()
}

func (ctx *Context) advanceClock() {
	ctx.clock.Advance()
	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		stats := ctx.engine.Stats()
		log.Infof(
			"STEP: %d(%s) moves=%d collisions=%d deaths=%d",
			ctx.clock.InternalStep, ctx.clock,
			stats.Moves, stats.Collisions, stats.Deaths,
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：推进引擎一步，快照经订阅推送给显示层
func (ctx *Context) update() {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	ctx.engine.Step()
}

// StepOnce 在运行循环之外手动推进一步
// 返回：推进后的快照
func (ctx *Context) StepOnce() *engine.Snapshot {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	ctx.advanceClock()
	ctx.engine.Step()
	return ctx.engine.Snapshot()
}

// ResetAll 将引擎与时钟恢复到初始状态
// 返回：恢复后的快照
func (ctx *Context) ResetAll() *engine.Snapshot {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	ctx.clock.Init()
	ctx.engine.Reset()
	log.Infof("simulation reset")
	return ctx.engine.Snapshot()
}

// Run 运行
// 算法说明：
// 1. 初始化并与syncer完成首次同步
// 2. 循环执行prepare、NotifyStepReady、update、Step
// 3. 到达结束步、syncer要求关闭或收到Close后退出
// 4. DT大于0时按DT节拍推进，便于显示层观察
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.sidecar.Step(false)
	var pace <-chan time.Time
	if ctx.clock.DT > 0 {
		ticker := time.NewTicker(time.Duration(ctx.clock.DT * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}
	for {
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.sidecar.NotifyStepReady()
		log.Debugf("step %d: NotifyStepReady complete", ctx.clock.InternalStep)
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		close := ctx.sidecar.Step(ctx.clock.IsLast())
		if close || ctx.closed.Load() {
			break
		}
		if pace != nil {
			<-pace
		}
	}
	log.Infof("engine complete at step %d", ctx.clock.InternalStep)
	ctx.Close()
}
