package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

// 各类型车辆的通行与转向策略
// chooseDirection只考虑地形，灯色由引擎在移动前通过canPass单独校验

// roadTerrain 机动车可选择的道路地形（不考虑灯色）
func roadTerrain(t entity.Terrain) bool {
	return t == entity.STREET || t == entity.LIGHT || t == entity.CROSSWALK
}

// pick 从候选朝向中均匀随机选取，候选为空时退化为任意随机朝向
func pick(candidates []entity.Direction, rng entity.Rand) entity.Direction {
	if len(candidates) == 0 {
		return entity.RandomDirection(rng)
	}
	return candidates[rng.Intn(len(candidates))]
}

// forwardCandidates 除反向外满足条件的相邻朝向，按枚举顺序
func forwardCandidates(v *Vehicle, n entity.Neighbors, ok func(entity.Terrain) bool) []entity.Direction {
	reverse := v.heading.Reverse()
	return lo.Filter(entity.Directions(), func(d entity.Direction, _ int) bool {
		return d != reverse && ok(n.Get(d))
	})
}

// preferStraight 依次尝试直行、左转、右转，都不满足时返回(_, false)
func preferStraight(v *Vehicle, n entity.Neighbors, ok func(entity.Terrain) bool) (entity.Direction, bool) {
	for _, d := range []entity.Direction{v.heading, v.heading.Left(), v.heading.Right()} {
		if ok(n.Get(d)) {
			return d, true
		}
	}
	return v.heading, false
}

// randomOrReverse 在非反向候选中随机选取，没有候选时掉头
func randomOrReverse(v *Vehicle, n entity.Neighbors, rng entity.Rand, ok func(entity.Terrain) bool) entity.Direction {
	candidates := forwardCandidates(v, n, ok)
	if len(candidates) == 0 {
		return v.heading.Reverse()
	}
	return pick(candidates, rng)
}

// Car：街道总可通行；红灯时不进入信号灯路口；人行横道只在绿灯时通过
func carCanPass(_ *Vehicle, t entity.Terrain, l entity.Light) bool {
	switch t {
	case entity.STREET:
		return true
	case entity.LIGHT:
		return l != entity.RED
	case entity.CROSSWALK:
		return l == entity.GREEN
	default:
		return false
	}
}

func carChoose(v *Vehicle, n entity.Neighbors, _ entity.Rand) entity.Direction {
	if d, ok := preferStraight(v, n, roadTerrain); ok {
		return d
	}
	return v.heading.Reverse()
}

// Truck：无视信号灯路口，红灯时不进入人行横道
func truckCanPass(_ *Vehicle, t entity.Terrain, l entity.Light) bool {
	switch t {
	case entity.STREET, entity.LIGHT:
		return true
	case entity.CROSSWALK:
		return l != entity.RED
	default:
		return false
	}
}

func truckChoose(v *Vehicle, n entity.Neighbors, rng entity.Rand) entity.Direction {
	return randomOrReverse(v, n, rng, roadTerrain)
}

// Taxi：只在绿灯时进入路口和人行横道；在红灯人行横道前连续等待taxiMaxWait步后通过
func taxiCanPass(v *Vehicle, t entity.Terrain, l entity.Light) bool {
	if t == entity.CROSSWALK && l == entity.RED {
		v.wait++
		if v.wait >= taxiMaxWait {
			v.wait = 0
			return true
		}
		return false
	}
	v.wait = 0
	switch t {
	case entity.STREET:
		return true
	case entity.LIGHT, entity.CROSSWALK:
		return l == entity.GREEN
	default:
		return false
	}
}

// Atv：除墙以外均可通行
func atvCanPass(_ *Vehicle, t entity.Terrain, _ entity.Light) bool {
	return t != entity.WALL
}

func atvChoose(v *Vehicle, n entity.Neighbors, rng entity.Rand) entity.Direction {
	return randomOrReverse(v, n, rng, func(t entity.Terrain) bool { return t != entity.WALL })
}

// Human：草地总可通行；人行横道只在黄灯或红灯时通过
func humanCanPass(_ *Vehicle, t entity.Terrain, l entity.Light) bool {
	switch t {
	case entity.GRASS:
		return true
	case entity.CROSSWALK:
		return l == entity.YELLOW || l == entity.RED
	default:
		return false
	}
}

// 相邻有人行横道时总是转向人行横道（绿灯时原地等待，不会转身避开）
func humanChoose(v *Vehicle, n entity.Neighbors, rng entity.Rand) entity.Direction {
	crosswalks := forwardCandidates(v, n, func(t entity.Terrain) bool { return t == entity.CROSSWALK })
	if len(crosswalks) > 0 {
		return crosswalks[0]
	}
	return randomOrReverse(v, n, rng, func(t entity.Terrain) bool { return t == entity.GRASS })
}

// Bicycle：街道和小径总可通行；路口与人行横道只在绿灯时通过
func bicycleCanPass(_ *Vehicle, t entity.Terrain, l entity.Light) bool {
	switch t {
	case entity.STREET, entity.TRAIL:
		return true
	case entity.LIGHT, entity.CROSSWALK:
		return l == entity.GREEN
	default:
		return false
	}
}

// 优先沿小径行驶，其次按直行、左转、右转选择道路，最后掉头
func bicycleChoose(v *Vehicle, n entity.Neighbors, _ entity.Rand) entity.Direction {
	if d, ok := preferStraight(v, n, func(t entity.Terrain) bool { return t == entity.TRAIL }); ok {
		return d
	}
	if d, ok := preferStraight(v, n, roadTerrain); ok {
		return d
	}
	return v.heading.Reverse()
}
