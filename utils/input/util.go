package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/vehicle"
)

var (
	ErrMalformed = errors.New("malformed city map")
)

// lineReader 跳过空行的逐行读取器
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func (r *lineReader) next() (string, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: unexpected end of input after line %d", ErrMalformed, r.line)
}

// parseInts 解析一行中的n个整数
func parseInts(line string, n int) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d integers, got %q", ErrMalformed, n, line)
	}
	res := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		res[i] = v
	}
	return res, nil
}

// parseRow 解析一行地形编码
// 说明：只读取前cols个字符，行长度不足视为非矩形
func parseRow(line string, cols int) ([]entity.Terrain, error) {
	if len(line) < cols {
		return nil, fmt.Errorf("%w: row %q shorter than %d columns", ErrMalformed, line, cols)
	}
	row := make([]entity.Terrain, cols)
	for x := range cols {
		t, err := entity.ParseTerrain(line[x])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", x, err)
		}
		row[x] = t
	}
	return row, nil
}

// parseVehicle 解析车辆描述行，格式为"K x y D"
func parseVehicle(line string) (vehicle.Descriptor, error) {
	var d vehicle.Descriptor
	fields := strings.Fields(line)
	if len(fields) != 4 || len(fields[0]) != 1 || len(fields[3]) != 1 {
		return d, fmt.Errorf("%w: vehicle line %q", ErrMalformed, line)
	}
	kind, err := vehicle.ParseKind(fields[0][0])
	if err != nil {
		return d, err
	}
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	heading, err := entity.ParseDirection(fields[3][0])
	if err != nil {
		return d, err
	}
	return vehicle.Descriptor{Kind: kind, X: x, Y: y, Heading: heading}, nil
}

// ReadCity 读取文本格式的城市地图
// 功能：解析地形网格与车辆列表
// 参数：r-输入流
// 返回：解析结果或加载错误
// 算法说明：
// 1. 第一行为"行数 列数"
// 2. 随后每行为一行地形编码
// 3. 接着一行为车辆数
// 4. 随后每行为"类型 x y 朝向"
func ReadCity(r io.Reader) (*Input, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}
	header, err := lr.next()
	if err != nil {
		return nil, err
	}
	dims, err := parseInts(header, 2)
	if err != nil {
		return nil, err
	}
	rows, cols := dims[0], dims[1]
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrMalformed, rows, cols)
	}
	// 行数与车辆数来自输入，不据此预分配，随读取逐行追加
	grid := make([][]entity.Terrain, 0)
	for y := 0; y < rows; y++ {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		row, err := parseRow(line, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		grid = append(grid, row)
	}
	countLine, err := lr.next()
	if err != nil {
		return nil, err
	}
	count, err := parseInts(countLine, 1)
	if err != nil {
		return nil, err
	}
	if count[0] < 0 {
		return nil, fmt.Errorf("%w: negative vehicle count %d", ErrMalformed, count[0])
	}
	lines := make([]string, 0)
	for i := 0; i < count[0]; i++ {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	vehicles, err := parseVehicles(lines)
	if err != nil {
		return nil, err
	}
	return &Input{Grid: grid, Vehicles: vehicles}, nil
}

func parseVehicles(lines []string) ([]vehicle.Descriptor, error) {
	vehicles := make([]vehicle.Descriptor, len(lines))
	for i, line := range lines {
		d, err := parseVehicle(line)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", i, err)
		}
		vehicles[i] = d
	}
	return vehicles, nil
}
