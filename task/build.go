package task

import (
	"fmt"

	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/signal"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/input"
)

// BuildPrograms 根据配置构建两组信控程序
func BuildPrograms(light config.Light) (signal.Programs, error) {
	traffic, err := signal.ProgramFromConfig(light.Traffic)
	if err != nil {
		return signal.Programs{}, fmt.Errorf("control.light.traffic: %w", err)
	}
	crosswalk, err := signal.ProgramFromConfig(light.Crosswalk)
	if err != nil {
		return signal.Programs{}, fmt.Errorf("control.light.crosswalk: %w", err)
	}
	log.Infof("traffic program %v, crosswalk program %v, per cell: %v, disabled: %v",
		signal.ProgramColors(traffic), signal.ProgramColors(crosswalk), light.PerCell, light.Disabled)
	return signal.Programs{
		Traffic:   traffic,
		Crosswalk: crosswalk,
		PerCell:   light.PerCell,
		Disabled:  light.Disabled,
	}, nil
}

// BuildEngine 加载地图并构建引擎
// 功能：CLI的run/simulate/check共用的初始化路径
// 算法说明：
// 1. 按配置从文件或MongoDB加载地图
// 2. 构建信控程序
// 3. 以配置的随机种子创建引擎，期间校验尺寸、地形与车辆坐标
func BuildEngine(c config.Config) (*engine.Engine, error) {
	in, err := input.Init(c)
	if err != nil {
		return nil, err
	}
	programs, err := BuildPrograms(c.Control.Light)
	if err != nil {
		return nil, err
	}
	return engine.New(in.Grid, in.Vehicles, engine.Options{
		Programs: programs,
		Seed:     c.Control.Seed,
	})
}
