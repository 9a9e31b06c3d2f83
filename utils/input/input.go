package input

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNoMapSource = errors.New("no map source: set input.map.file or input.uri with input.map.db/col")
)

// Input 输入数据
// 功能：存储地图加载得到的地形网格与车辆列表
type Input struct {
	Grid     [][]entity.Terrain
	Vehicles []vehicle.Descriptor
}

// mapDocument MongoDB中的地图文档
type mapDocument struct {
	Name     string   `bson:"name"`
	Rows     []string `bson:"rows"`
	Vehicles []string `bson:"vehicles"` // "K x y D"
}

// Init 加载地图
// 功能：根据配置从文件或MongoDB加载地图
// 参数：config-配置对象
// 返回：加载结果或加载错误
// 说明：文件优先于MongoDB
func Init(config config.Config) (*Input, error) {
	path := config.Input.Map
	if path.File != "" {
		return LoadFile(path.File)
	}
	if config.Input.URI != "" && path.DB != "" && path.Col != "" {
		client := mongoutil.NewClient(config.Input.URI)
		defer client.Disconnect(context.Background())
		return LoadMongo(context.Background(), mongoutil.GetMongoColl(client, path), path.Name)
	}
	return nil, ErrNoMapSource
}

// LoadFile 从文本文件加载地图
func LoadFile(file string) (*Input, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("could not read city map file: %w", err)
	}
	defer f.Close()
	res, err := ReadCity(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	log.Infof("loaded %s: %dx%d, %d vehicles", file, len(res.Grid[0]), len(res.Grid), len(res.Vehicles))
	return res, nil
}

// LoadMongo 从MongoDB集合加载指定名称的地图文档
func LoadMongo(ctx context.Context, coll *mongo.Collection, name string) (*Input, error) {
	log.Infof("start fetching map %q from %s.%s", name, coll.Database().Name(), coll.Name())
	var doc mapDocument
	if err := coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("fetch map %q: %w", name, err)
	}
	res, err := FromDocument(doc.Rows, doc.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}
	log.Infof("finish fetching map %q", name)
	return res, nil
}

// FromDocument 由行编码与车辆描述行构建输入
// 说明：列数取第一行长度，其余行长度必须一致
func FromDocument(rows []string, vehicles []string) (*Input, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}
	cols := len(rows[0])
	grid := make([][]entity.Terrain, len(rows))
	for y, line := range rows {
		if len(line) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformed, y, len(line), cols)
		}
		row, err := parseRow(line, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		grid[y] = row
	}
	descs, err := parseVehicles(vehicles)
	if err != nil {
		return nil, err
	}
	return &Input{Grid: grid, Vehicles: descs}, nil
}
