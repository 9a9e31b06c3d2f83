package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/config"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	// 独立部署：不需要syncer，不向其他服务提供受保护的RPC访问
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 模拟任务名
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 本程序监听的gRPC地址
	grpcAddr = flag.String("listen", ":51102", "gRPC listening address")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "roadrage")

	errNoConfig = errors.New("config file or config data must be specified")
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roadrage",
		Short: "Road Rage grid traffic simulator",
		Long: `roadrage simulates vehicles moving over a wrap-around grid of terrain
cells with traffic signals, and serves the state to a websocket display
and a connect-RPC control service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLog()
		},
	}
	// go flag（包括各包内注册的log.heartbeat_interval、rand.seed_offset）统一交给cobra解析
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(
		newRunCmd(),
		newSimulateCmd(),
		newCheckCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func setupLog() error {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	level, ok := logLevels[*logLevel]
	if !ok {
		return fmt.Errorf("log.level must be one of %v", logLevels)
	}
	logrus.SetLevel(level)
	return nil
}

// loadConfig 读取配置文件或Base64编码的配置数据
func loadConfig() (config.Config, error) {
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config file load err: %w", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			return config.Config{}, fmt.Errorf("config data load err: %w", err)
		}
	} else {
		return config.Config{}, errNoConfig
	}
	c, err := config.Parse(file)
	if err != nil {
		return c, err
	}
	log.Infof("%+v", c)
	return c, nil
}
