package server

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Config 进程级配置；世界尺寸与 Tick 间隔是固定常量，不在此处配置
type Config struct {
	Addr     string
	LogFile  string
	LogLevel string
}

const (
	defaultAddr     = ":3000"
	defaultLogFile  = "app.log"
	defaultLogLevel = "info"
)

// LoadConfig 优先级：默认值 < .env 文件 < 环境变量 < 命令行参数。
// .env 文件不存在不算错误；envFiles 为空时读取当前目录的 .env。
func LoadConfig(args []string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Config{
		Addr:     envOr("ADDR", defaultAddr),
		LogFile:  envOr("LOG_FILE", defaultLogFile),
		LogLevel: envOr("LOG_LEVEL", defaultLogLevel),
	}

	fsFlags := flag.NewFlagSet("snakearena", flag.ContinueOnError)
	fsFlags.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :3000")
	fsFlags.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	fsFlags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "stderr log level: debug, info, warn, error")
	if err := fsFlags.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
