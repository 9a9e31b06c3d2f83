package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// Vehicle管理器
// 说明：车辆按加载顺序保存，引擎按该顺序逐一更新，保证结果可复现
type Manager struct {
	data     map[int32]*Vehicle
	vehicles []*Vehicle
}

// NewManager 创建车辆管理器实例
func NewManager() *Manager {
	return &Manager{
		data:     make(map[int32]*Vehicle),
		vehicles: make([]*Vehicle, 0),
	}
}

// Init 根据地图描述初始化所有车辆
// 功能：按描述顺序创建车辆，编号即顺序下标
// 参数：descs-车辆描述列表
// 返回：任一车辆创建失败时返回错误，此时管理器保持为空
func (m *Manager) Init(descs []Descriptor) error {
	vehicles := make([]*Vehicle, 0, len(descs))
	for i, d := range descs {
		v, err := NewFromDescriptor(int32(i), d)
		if err != nil {
			return fmt.Errorf("vehicle #%d (%v): %w", i, d, err)
		}
		vehicles = append(vehicles, v)
	}
	m.vehicles = vehicles
	m.data = lo.SliceToMap(m.vehicles, func(v *Vehicle) (int32, *Vehicle) {
		return v.id, v
	})
	log.Debugf("init %d vehicles", len(m.vehicles))
	return nil
}

// Get 根据ID获取车辆，不存在则panic
func (m *Manager) Get(id int32) entity.IVehicle {
	if v, ok := m.data[id]; !ok {
		log.Panicf("no id %d in vehicle data", id)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取车辆，不存在则返回错误
func (m *Manager) GetOrError(id int32) (entity.IVehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return v, nil
	}
}

// Data 按加载顺序返回全部车辆
func (m *Manager) Data() []entity.IVehicle {
	return lo.Map(m.vehicles, func(v *Vehicle, _ int) entity.IVehicle { return v })
}

// Vehicles 按加载顺序返回全部车辆（具体类型）
func (m *Manager) Vehicles() []*Vehicle {
	return m.vehicles
}

// Reset 所有车辆回到初始位置并复活
func (m *Manager) Reset() {
	for _, v := range m.vehicles {
		v.Reset()
	}
}
