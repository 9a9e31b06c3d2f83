package entity

// Manager依赖倒置

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id int32) IVehicle
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id int32) (IVehicle, error)
	// 按加载顺序返回全部车辆
	Data() []IVehicle

	Reset() // 所有车辆回到初始状态
}

// entity/signal/manager.go的依赖倒置
type ISignalManager interface {
	ColorAt(index int) Light // 指定单元格的当前灯色，非信号单元格返回环境灯色
	Colors() []Light         // 每个信号灯的当前灯色

	RemainingAt(index int) float64 // 指定单元格当前灯色还会保持的步数，常绿时为无穷大

	Prepare()          // 准备阶段：写入snapshot
	Update(dt float64) // 更新阶段：推进相位
	Reset()            // 回到初始相位
}
