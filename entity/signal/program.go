package signal

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
)

// 默认各颜色时长（步）
const (
	defaultGreen  = 10
	defaultYellow = 5
	defaultRed    = 10
)

// DefaultProgram 默认程序：从绿灯开始按Light.Advance顺序循环
func DefaultProgram() *mapv2.TrafficLight {
	durations := map[entity.Light]float64{
		entity.GREEN:  defaultGreen,
		entity.YELLOW: defaultYellow,
		entity.RED:    defaultRed,
	}
	phases := make([]*mapv2.Phase, 0, len(durations))
	for l := entity.GREEN; len(phases) < len(durations); l = l.Advance() {
		phases = append(phases, &mapv2.Phase{
			Duration: durations[l],
			States:   []mapv2.LightState{l.ToPb()},
		})
	}
	return &mapv2.TrafficLight{Phases: phases}
}

// ProgramFromConfig 将配置中的相位列表转换为信控程序
// 返回：配置为空时返回默认程序；颜色无法识别或程序不合法时返回错误
func ProgramFromConfig(phases []config.Phase) (*mapv2.TrafficLight, error) {
	if len(phases) == 0 {
		return DefaultProgram(), nil
	}
	tl := &mapv2.TrafficLight{Phases: make([]*mapv2.Phase, 0, len(phases))}
	for _, p := range phases {
		l, err := entity.ParseLight(p.Color)
		if err != nil {
			return nil, err
		}
		tl.Phases = append(tl.Phases, &mapv2.Phase{
			Duration: float64(p.Duration),
			States:   []mapv2.LightState{l.ToPb()},
		})
	}
	if err := ValidateProgram(tl); err != nil {
		return nil, err
	}
	return tl, nil
}

// ProgramColors 程序中各相位的灯色，用于日志
func ProgramColors(tl *mapv2.TrafficLight) []string {
	return lo.Map(tl.Phases, func(p *mapv2.Phase, _ int) string {
		l, _ := entity.LightFromPb(p.States[0])
		return l.String()
	})
}
