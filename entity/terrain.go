package entity

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTerrain   = errors.New("unknown terrain code")
	ErrUnknownDirection = errors.New("unknown direction code")
	ErrUnknownLight     = errors.New("unknown light color")
)

// Terrain 地图单元格的地形类型
// 功能：描述网格中每个单元格的固定表面类型，加载后不可变
// 说明：LIGHT与CROSSWALK为带信号灯的单元格，其颜色由信号灯模块维护
type Terrain int32

const (
	WALL      Terrain = iota // 墙
	STREET                   // 街道
	LIGHT                    // 信号灯路口
	CROSSWALK                // 人行横道
	GRASS                    // 草地
	TRAIL                    // 小径
)

// 地形与地图文件编码的双向映射
var (
	terrainCodes = [...]byte{
		WALL:      'W',
		STREET:    'S',
		LIGHT:     'L',
		CROSSWALK: 'C',
		GRASS:     'G',
		TRAIL:     'T',
	}
	terrainNames = [...]string{
		WALL:      "WALL",
		STREET:    "STREET",
		LIGHT:     "LIGHT",
		CROSSWALK: "CROSSWALK",
		GRASS:     "GRASS",
		TRAIL:     "TRAIL",
	}
)

// Terrains 返回所有地形，按枚举顺序
func Terrains() []Terrain {
	return []Terrain{WALL, STREET, LIGHT, CROSSWALK, GRASS, TRAIL}
}

// ParseTerrain 将地图编码转换为地形
// 参数：code-地图文件中的单字符编码
// 返回：对应地形，未知编码返回ErrUnknownTerrain
func ParseTerrain(code byte) (Terrain, error) {
	for t, c := range terrainCodes {
		if c == code {
			return Terrain(t), nil
		}
	}
	return WALL, fmt.Errorf("%w: %q", ErrUnknownTerrain, code)
}

// Code 地形对应的地图编码
func (t Terrain) Code() byte {
	return terrainCodes[t]
}

// HasSignal 判断该地形是否受信号灯控制
func (t Terrain) HasSignal() bool {
	return t == LIGHT || t == CROSSWALK
}

func (t Terrain) String() string {
	if t < 0 || int(t) >= len(terrainNames) {
		return fmt.Sprintf("Terrain(%d)", int32(t))
	}
	return terrainNames[t]
}
