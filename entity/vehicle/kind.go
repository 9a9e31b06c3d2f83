package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

var (
	ErrUnknownKind   = errors.New("unknown vehicle kind")
	ErrNegativeCoord = errors.New("negative vehicle coordinate")
)

// Kind 车辆类型，封闭枚举
// 说明：所有类型共享同一套CanPass/ChooseDirection/Collide接口，具体行为由policies表分派
type Kind int32

const (
	CAR Kind = iota
	TRUCK
	TAXI
	ATV
	HUMAN
	BICYCLE
)

// 各类型车辆被撞后的复活步数
const (
	carDeathTime     = 15
	truckDeathTime   = 0
	taxiDeathTime    = 15
	atvDeathTime     = 25
	humanDeathTime   = 45
	bicycleDeathTime = 35

	taxiMaxWait = 3 // 出租车在红灯人行横道前最多等待的步数
)

// policy 单一车辆类型的行为表
type policy struct {
	name      string
	code      byte
	deathTime int
	canPass   func(v *Vehicle, t entity.Terrain, l entity.Light) bool
	choose    func(v *Vehicle, n entity.Neighbors, rng entity.Rand) entity.Direction
}

var policies = [...]policy{
	CAR:     {name: "car", code: 'C', deathTime: carDeathTime, canPass: carCanPass, choose: carChoose},
	TRUCK:   {name: "truck", code: 'T', deathTime: truckDeathTime, canPass: truckCanPass, choose: truckChoose},
	TAXI:    {name: "taxi", code: 'X', deathTime: taxiDeathTime, canPass: taxiCanPass, choose: carChoose},
	ATV:     {name: "atv", code: 'A', deathTime: atvDeathTime, canPass: atvCanPass, choose: atvChoose},
	HUMAN:   {name: "human", code: 'H', deathTime: humanDeathTime, canPass: humanCanPass, choose: humanChoose},
	BICYCLE: {name: "bicycle", code: 'B', deathTime: bicycleDeathTime, canPass: bicycleCanPass, choose: bicycleChoose},
}

// Kinds 返回所有车辆类型
func Kinds() []Kind {
	return []Kind{CAR, TRUCK, TAXI, ATV, HUMAN, BICYCLE}
}

// ParseKind 将地图文件中的车辆编码转换为车辆类型
func ParseKind(code byte) (Kind, error) {
	for k, p := range policies {
		if p.code == code {
			return Kind(k), nil
		}
	}
	return CAR, fmt.Errorf("%w: %q", ErrUnknownKind, code)
}

// DeathTime 该类型被撞后的复活步数，0表示不会死亡
func (k Kind) DeathTime() int {
	return policies[k].deathTime
}

// Code 地图文件编码
func (k Kind) Code() byte {
	return policies[k].code
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(policies) {
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
	return strings.ToUpper(policies[k].name)
}
