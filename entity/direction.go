package entity

import "fmt"

// Direction 罗盘朝向
// 功能：表示车辆朝向，提供反向、左转、右转等纯函数
// 说明：枚举按逆时针顺序排列（北、西、南、东），左转即+1，右转即-1
type Direction int32

const (
	NORTH Direction = iota
	WEST
	SOUTH
	EAST

	DirectionCount = 4 // 朝向数量
)

var (
	directionCodes = [DirectionCount]byte{NORTH: 'N', WEST: 'W', SOUTH: 'S', EAST: 'E'}
	directionNames = [DirectionCount]string{NORTH: "NORTH", WEST: "WEST", SOUTH: "SOUTH", EAST: "EAST"}
	// 屏幕坐标系，y轴向下
	directionDeltas = [DirectionCount][2]int{NORTH: {0, -1}, WEST: {-1, 0}, SOUTH: {0, 1}, EAST: {1, 0}}
)

// Rand 随机数来源接口
// 说明：randengine.Engine满足该接口，测试中使用固定种子保证可复现
type Rand interface {
	Intn(n int) int
}

// Directions 返回所有朝向，按枚举顺序
func Directions() []Direction {
	return []Direction{NORTH, WEST, SOUTH, EAST}
}

// ParseDirection 将地图编码转换为朝向
func ParseDirection(code byte) (Direction, error) {
	for d, c := range directionCodes {
		if c == code {
			return Direction(d), nil
		}
	}
	return NORTH, fmt.Errorf("%w: %q", ErrUnknownDirection, code)
}

// RandomDirection 从四个朝向中均匀随机选取
func RandomDirection(rng Rand) Direction {
	return Direction(rng.Intn(DirectionCount))
}

// Reverse 反向
func (d Direction) Reverse() Direction {
	return (d + 2) % DirectionCount
}

// Left 逆时针旋转90度
func (d Direction) Left() Direction {
	return (d + 1) % DirectionCount
}

// Right 顺时针旋转90度
func (d Direction) Right() Direction {
	return (d + DirectionCount - 1) % DirectionCount
}

// Delta 沿该朝向移动一格的坐标增量
func (d Direction) Delta() (dx, dy int) {
	delta := directionDeltas[d]
	return delta[0], delta[1]
}

// Code 朝向对应的地图编码
func (d Direction) Code() byte {
	return directionCodes[d]
}

func (d Direction) String() string {
	if d < 0 || d >= DirectionCount {
		return fmt.Sprintf("Direction(%d)", int32(d))
	}
	return directionNames[d]
}

// Neighbors 四个朝向上相邻单元格的地形，以Direction为下标
type Neighbors [DirectionCount]Terrain

// Get 获取指定朝向的相邻地形
func (n Neighbors) Get(d Direction) Terrain {
	return n[d]
}
