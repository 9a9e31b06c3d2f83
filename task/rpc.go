package task

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ControlServiceName = "roadrage.v1.ControlService"

	ControlServiceStepProcedure        = "/" + ControlServiceName + "/Step"
	ControlServiceResetProcedure       = "/" + ControlServiceName + "/Reset"
	ControlServiceGetSnapshotProcedure = "/" + ControlServiceName + "/GetSnapshot"
)

// Register 将ControlService注册到sidecar
func (ctx *Context) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		ControlServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return ctx.ControlHandler(opts...)
		},
	)
}

// ControlHandler 构建ControlService的HTTP处理器
// 说明：请求均为google.protobuf.Empty，响应为以google.protobuf.Struct表示的快照
func (ctx *Context) ControlHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ControlServiceStepProcedure, connect.NewUnaryHandler(
		ControlServiceStepProcedure, ctx.Step, opts...,
	))
	mux.Handle(ControlServiceResetProcedure, connect.NewUnaryHandler(
		ControlServiceResetProcedure, ctx.Reset, opts...,
	))
	mux.Handle(ControlServiceGetSnapshotProcedure, connect.NewUnaryHandler(
		ControlServiceGetSnapshotProcedure, ctx.GetSnapshot, opts...,
	))
	return "/" + ControlServiceName + "/", mux
}

// Step 推进一步并返回快照
func (ctx *Context) Step(c context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(ctx.StepOnce())
}

// Reset 恢复初始状态并返回快照
func (ctx *Context) Reset(c context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(ctx.ResetAll())
}

// GetSnapshot 获取当前快照
func (ctx *Context) GetSnapshot(c context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(ctx.Snapshot())
}

func snapshotResponse(s *engine.Snapshot) (*connect.Response[structpb.Struct], error) {
	pb, err := structpb.NewStruct(s.ToMap())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(pb), nil
}
