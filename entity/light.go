package entity

import (
	"fmt"
	"strings"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// Light 信号灯颜色
type Light int32

const (
	RED Light = iota
	YELLOW
	GREEN
)

var lightNames = [...]string{RED: "RED", YELLOW: "YELLOW", GREEN: "GREEN"}

// Lights 返回所有颜色，按枚举顺序
func Lights() []Light {
	return []Light{RED, YELLOW, GREEN}
}

// ParseLight 解析配置文件中的颜色名（大小写不敏感）
func ParseLight(name string) (Light, error) {
	for l, n := range lightNames {
		if strings.EqualFold(n, name) {
			return Light(l), nil
		}
	}
	return RED, fmt.Errorf("%w: %q", ErrUnknownLight, name)
}

// LightFromPb 将信控程序中的灯色转换为Light
// 返回：对应颜色，UNSPECIFIED等无法识别的状态返回错误
func LightFromPb(state mapv2.LightState) (Light, error) {
	switch state {
	case mapv2.LightState_LIGHT_STATE_RED:
		return RED, nil
	case mapv2.LightState_LIGHT_STATE_YELLOW:
		return YELLOW, nil
	case mapv2.LightState_LIGHT_STATE_GREEN:
		return GREEN, nil
	default:
		return RED, fmt.Errorf("%w: %v", ErrUnknownLight, state)
	}
}

// Advance 默认循环顺序：绿 -> 黄 -> 红 -> 绿
func (l Light) Advance() Light {
	switch l {
	case GREEN:
		return YELLOW
	case YELLOW:
		return RED
	default:
		return GREEN
	}
}

// ToPb 转换为信控程序使用的灯色
func (l Light) ToPb() mapv2.LightState {
	switch l {
	case RED:
		return mapv2.LightState_LIGHT_STATE_RED
	case YELLOW:
		return mapv2.LightState_LIGHT_STATE_YELLOW
	default:
		return mapv2.LightState_LIGHT_STATE_GREEN
	}
}

func (l Light) String() string {
	if l < 0 || int(l) >= len(lightNames) {
		return fmt.Sprintf("Light(%d)", int32(l))
	}
	return lightNames[l]
}
