package task_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/roadrage-sim/task"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const cityMap = `3 3
SSS
SLS
SSS
2
T 0 0 E
C 2 2 W
`

func newConfig(t *testing.T) config.Config {
	file := filepath.Join(t.TempDir(), "city.txt")
	require.NoError(t, os.WriteFile(file, []byte(cityMap), 0o644))
	var c config.Config
	c.Input.Map.File = file
	c.Control.Seed = 1
	c.Control.Step.Total = 10
	return c
}

func TestBuildEngine(t *testing.T) {
	c := newConfig(t)
	e, err := task.BuildEngine(c)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Width())
	assert.Len(t, e.Vehicles(), 2)

	c.Control.Light.Traffic = []config.Phase{{Color: "blue", Duration: 1}}
	_, err = task.BuildEngine(c)
	assert.Error(t, err)
}

func TestHeadlessContext(t *testing.T) {
	ctx, err := task.NewContext("test", newConfig(t), nil, false)
	require.NoError(t, err)
	t.Cleanup(ctx.Close)
	ctx.Init()

	for range 4 {
		ctx.StepOnce()
	}
	assert.Equal(t, int32(4), ctx.Clock().InternalStep)
	assert.Equal(t, int64(4), ctx.Snapshot().Tick)
	alive := 0
	for _, n := range ctx.CountAlive() {
		alive += n
	}
	assert.LessOrEqual(t, alive, 2)

	s := ctx.ResetAll()
	assert.Equal(t, int64(0), s.Tick)
	assert.Equal(t, int32(0), ctx.Clock().InternalStep)
	assert.Equal(t, map[string]int{"truck": 1, "car": 1}, ctx.CountAlive())
	assert.Zero(t, ctx.Stats().Moves)
}

func TestControlService(t *testing.T) {
	c := newConfig(t)
	c.Output.Display = "127.0.0.1:0"
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)
	ctx, err := task.NewContext("test", c, nil, false)
	require.NoError(t, err)
	t.Cleanup(ctx.Close)
	require.NotNil(t, ctx.Hub())
	// 启动显示层时的就绪探测不应触发websocket升级失败
	for _, entry := range hook.AllEntries() {
		assert.Greater(t, entry.Level, logrus.WarnLevel, entry.Message)
	}

	pattern, handler := ctx.ControlHandler()
	assert.Equal(t, "/"+task.ControlServiceName+"/", pattern)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	call := func(procedure string) *structpb.Struct {
		client := connect.NewClient[emptypb.Empty, structpb.Struct](srv.Client(), srv.URL+procedure)
		res, err := client.CallUnary(context.Background(), connect.NewRequest(&emptypb.Empty{}))
		require.NoError(t, err)
		return res.Msg
	}

	s := call(task.ControlServiceStepProcedure)
	assert.Equal(t, 1.0, s.Fields["tick"].GetNumberValue())
	s = call(task.ControlServiceStepProcedure)
	assert.Equal(t, 2.0, s.Fields["tick"].GetNumberValue())
	assert.Len(t, s.Fields["vehicles"].GetListValue().GetValues(), 2)
	assert.Equal(t, []any{"SSS", "SLS", "SSS"}, s.Fields["rows"].GetListValue().AsSlice())

	s = call(task.ControlServiceGetSnapshotProcedure)
	assert.Equal(t, 2.0, s.Fields["tick"].GetNumberValue())

	s = call(task.ControlServiceResetProcedure)
	assert.Equal(t, 0.0, s.Fields["tick"].GetNumberValue())
	assert.Equal(t, 0.0, s.Fields["stats"].GetStructValue().Fields["moves"].GetNumberValue())
}
