package entity

// Peer 碰撞时对方车辆的只读视图
// 说明：碰撞判定只读取对方的存活状态与死亡时间，不修改对方
type Peer interface {
	Alive() bool    // 是否存活
	DeathTime() int // 被撞后需要等待的复活步数
}

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	Peer

	ID() int32                // 加载顺序编号
	X() int                   // 列坐标
	Y() int                   // 行坐标
	Heading() Direction       // 当前朝向
	Counter() int             // 距离复活的剩余步数，0表示存活
	ImageName() string        // 显示层使用的图片名
	KindName() string         // 车辆类型名
	SetPosition(x, y int)     // 更新位置
	SetHeading(d Direction)   // 更新朝向
	CanPass(t Terrain, l Light) bool
	ChooseDirection(n Neighbors, rng Rand) Direction
	Collide(other Peer)
	Poke()
	Reset()
}
