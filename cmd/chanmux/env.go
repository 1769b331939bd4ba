package main

import (
	"flag"
	"os"
	"strings"
)

// ============================================================================
//                              环境变量（CLI 专用）
// ============================================================================

// 环境变量名，优先级高于配置文件，低于命令行参数
const (
	envConfig   = "CHANMUX_CONFIG"
	envListen   = "CHANMUX_LISTEN"
	envPacks    = "CHANMUX_PACKS"
	envLogLevel = "CHANMUX_LOG_LEVEL"
)

// flagOrEnv 命令行未显式设置时取环境变量
func flagOrEnv(fs *flag.FlagSet, name, value, env string) string {
	if isFlagSet(fs, name) {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return value
}

// splitAndTrim 分割并去除空项
func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
