package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义地图数据输入路径，文件优先于MongoDB
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 地图文档名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定模拟器所有输入数据的配置项
type Input struct {
	URI string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Map InputPath `yaml:"map"`           // 地图
}

// ControlStep 指定模拟器模拟步数范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数，0表示不限
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒），未指定时为0.1，负数表示不等待
}

// Phase 信号灯相位
type Phase struct {
	Color    string `yaml:"color"`    // red|yellow|green
	Duration int32  `yaml:"duration"` // 持续步数
}

// Light 信号灯配置
// 说明：相位列表为空时使用默认程序（绿10、黄5、红10）
type Light struct {
	PerCell   bool    `yaml:"per_cell,omitempty"`  // 每个信号单元格独立信号灯并错开相位
	Disabled  bool    `yaml:"disabled,omitempty"`  // 关闭所有信号灯（常绿）
	Traffic   []Phase `yaml:"traffic,omitempty"`   // LIGHT单元格程序
	Crosswalk []Phase `yaml:"crosswalk,omitempty"` // CROSSWALK单元格程序
}

// Control 模拟器控制配置
type Control struct {
	Step  ControlStep `yaml:"step"`
	Seed  uint64      `yaml:"seed,omitempty"` // 随机数种子
	Light Light       `yaml:"light,omitempty"`
}

// Output 输出配置
type Output struct {
	Display string `yaml:"display,omitempty"` // 显示层websocket监听地址，为空则不启动
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`            // 输入
	Control Control `yaml:"control"`          // 模拟过程控制
	Output  Output  `yaml:"output,omitempty"` // 输出
}
