package engine

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// 地图最小尺寸，1x1的环面上车辆的四个邻居都是自己
const (
	minWidth  = 2
	minHeight = 2
)

var (
	ErrBadDimensions = errors.New("bad grid dimensions")
	ErrNotRectangle  = errors.New("grid is not rectangular")
	ErrOutOfBounds   = errors.New("vehicle out of grid bounds")
)

// Grid 环面网格，按行优先存储地形
// 说明：越过边界的坐标从对边重新进入，加载后不可变
type Grid struct {
	width  int
	height int
	cells  []entity.Terrain
}

// NewGrid 由按行排列的地形创建网格
// 返回：行数或列数小于最小值、各行长度不一致时返回错误
func NewGrid(rows [][]entity.Terrain) (*Grid, error) {
	height := len(rows)
	if height == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrBadDimensions)
	}
	width := len(rows[0])
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotRectangle, y, len(row), width)
		}
	}
	if width < minWidth || height < minHeight {
		return nil, fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrBadDimensions, width, height, minWidth, minHeight)
	}
	cells := make([]entity.Terrain, 0, width*height)
	for _, row := range rows {
		cells = append(cells, row...)
	}
	return &Grid{width: width, height: height, cells: cells}, nil
}

// Width 列数
func (g *Grid) Width() int { return g.width }

// Height 行数
func (g *Grid) Height() int { return g.height }

// Wrap 对坐标做环面取模
func (g *Grid) Wrap(x, y int) (int, int) {
	x = (x%g.width + g.width) % g.width
	y = (y%g.height + g.height) % g.height
	return x, y
}

// Index 坐标对应的单元格下标（坐标先取模）
func (g *Grid) Index(x, y int) int {
	x, y = g.Wrap(x, y)
	return y*g.width + x
}

// Contains 坐标是否在网格范围内（不取模）
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At 坐标处的地形
func (g *Grid) At(x, y int) entity.Terrain {
	return g.cells[g.Index(x, y)]
}

// Next 从(x, y)沿d移动一格后的坐标
func (g *Grid) Next(x, y int, d entity.Direction) (int, int) {
	dx, dy := d.Delta()
	return g.Wrap(x+dx, y+dy)
}

// Neighbors 四个朝向上的相邻地形
func (g *Grid) Neighbors(x, y int) entity.Neighbors {
	var n entity.Neighbors
	for _, d := range entity.Directions() {
		n[d] = g.At(g.Next(x, y, d))
	}
	return n
}

// Rows 按行输出的地图编码，例如"SSLSS"
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := range g.height {
		for x := range g.width {
			buf[x] = g.cells[y*g.width+x].Code()
		}
		rows[y] = string(buf)
	}
	return rows
}
