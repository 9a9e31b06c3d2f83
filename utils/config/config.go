package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

const (
	defaultInterval = 0.1 // 默认每步间隔（秒）
)

// RuntimeConfig 运行时配置
// 功能：存储补全默认值后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// Parse 解析YAML配置
// 说明：使用严格模式，未知字段视为错误
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config parse err: %w", err)
	}
	return c, nil
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值
// 算法说明：
// 1. 未指定间隔时使用defaultInterval
// 2. 负数的总步数视为不限
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	if config.Control.Step.Interval < 0 {
		config.Control.Step.Interval = 0
	} else if config.Control.Step.Interval == 0 {
		config.Control.Step.Interval = defaultInterval
	}
	if config.Control.Step.Total < 0 {
		config.Control.Step.Total = 0
	}
	rc.All = config
	rc.C = config.Control

	return rc
}
