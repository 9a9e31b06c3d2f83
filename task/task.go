package task

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/clock"
	"github.com/tsinghua-fib-lab/roadrage-sim/display"
	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
)

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：引擎本身不支持并发，运行循环、控制RPC与快照读取都经由mtx串行
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理分布式模式下相关调用，包括与syncer、其他服务的交互
	sidecar *syncer.Sidecar
	// sidecar close channel，仅在由本上下文启动服务时有效
	sidecarCloseCh chan struct{}
	serving        bool

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 引擎及其访问锁
	mtx    sync.Mutex
	engine *engine.Engine

	// 显示层
	hub           *display.Hub
	displayServer *http.Server
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: 外部sidecar实例，为nil时不注册RPC（headless模式，仅用StepOnce推进）
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例，地图或信控程序不合法时返回错误
// 算法说明：
// 1. 补全运行时配置并创建时钟
// 2. 加载地图、构建引擎
// 3. 配置了显示地址时启动websocket服务并订阅引擎快照
// 4. 注册RPC服务到sidecar
// 5. 启动sidecar服务（如果需要）
func NewContext(
	job string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) (*Context, error) {
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
	}
	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.clock = clock.New(ctx.runtimeConfig.C.Step)

	e, err := BuildEngine(ctx.runtimeConfig.All)
	if err != nil {
		return nil, err
	}
	ctx.engine = e

	if addr := c.Output.Display; addr != "" {
		if err := ctx.startDisplay(addr); err != nil {
			return nil, err
		}
	}

	if ctx.sidecar == nil {
		return ctx, nil
	}
	ctx.clock.Register(ctx.sidecar)
	ctx.Register(ctx.sidecar)

	// sidecar协程，用于提供gRPC服务
	if startSidecarServe {
		ctx.serving = true
		go func() {
			err := ctx.sidecar.Serve()
			if err != nil {
				log.Panicf("failed to serve: %v", err)
			}
			ctx.sidecarCloseCh <- struct{}{}
		}()
	}

	return ctx, nil
}

// startDisplay 启动显示层websocket服务
func (ctx *Context) startDisplay(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("display listen on %s: %w", addr, err)
	}
	return ctx.serveDisplay(ln)
}

// serveDisplay 在已打开的监听上启动显示层，服务未就绪时关闭服务并返回错误
func (ctx *Context) serveDisplay(ln net.Listener) error {
	hub := display.NewHub()
	server := &http.Server{Handler: hub.Handler()}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("display server: %v", err)
		}
	}()
	// 探测非升级路径，避免在/ws上产生升级失败
	if err := waitForServerReady("http://"+ln.Addr().String()+"/", 10, 100*time.Millisecond); err != nil {
		server.Close()
		return err
	}
	ctx.hub = hub
	ctx.displayServer = server
	ctx.engine.Subscribe(hub.Publish)
	log.Infof("display listening on ws://%s/ws", ln.Addr())
	return nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

// Hub 显示层，未配置显示地址时为nil
func (ctx *Context) Hub() *display.Hub {
	return ctx.hub
}

// Snapshot 在锁内读取当前快照
func (ctx *Context) Snapshot() *engine.Snapshot {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	return ctx.engine.Snapshot()
}

// Stats 在锁内读取累计统计
func (ctx *Context) Stats() engine.Stats {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	return ctx.engine.Stats()
}

// CountAlive 在锁内统计各类型存活车辆数
func (ctx *Context) CountAlive() map[string]int {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	return lo.CountValuesBy(
		lo.Filter(ctx.engine.Vehicles(), func(v engine.VehicleView, _ int) bool { return v.Alive }),
		func(v engine.VehicleView) string { return v.Kind },
	)
}

// Init 运行前重置时钟并记录初始状态
func (ctx *Context) Init() {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	ctx.clock.Init()
	for _, v := range ctx.engine.Vehicles() {
		log.Debugf("vehicle %d: %s at (%d, %d) heading %s", v.ID, v.Kind, v.X, v.Y, v.Heading)
	}
	log.Infof("job %s: %dx%d grid, %d vehicles", ctx.job, ctx.engine.Width(), ctx.engine.Height(), len(ctx.engine.Vehicles()))
}

// Close 停止显示层与sidecar，可重复调用
func (ctx *Context) Close() {
	if !ctx.closed.CompareAndSwap(false, true) {
		return
	}
	if ctx.displayServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ctx.displayServer.Shutdown(shutdownCtx)
	}
	if ctx.sidecar == nil {
		return
	}
	ctx.sidecar.Close()
	// wait for graceful stop
	if ctx.serving {
		<-ctx.sidecarCloseCh
	}
}
