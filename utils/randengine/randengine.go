// 随机数引擎，包装了golang.org/x/exp/rand，保证同一种子得到同一随机序列
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：为车辆的随机转向提供可复现的随机数
// 说明：非线程安全，由引擎单线程使用
type Engine struct {
	*rand.Rand        // 底层随机数生成器
	seed       uint64 // 实际使用的种子
}

// New 创建随机数引擎
// 参数：seed-随机数种子（会加上种子偏移量）
func New(seed uint64) *Engine {
	s := seed + *seedOffset
	return &Engine{Rand: rand.New(rand.NewSource(s)), seed: s}
}

// InitialSeed 实际使用的种子
func (e *Engine) InitialSeed() uint64 {
	return e.seed
}
