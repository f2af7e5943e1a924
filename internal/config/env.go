package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Getenv 环境变量，空值取默认
func Getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// GetenvInt 整数环境变量；非法值取默认
func GetenvInt(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return def
}

// GetenvBool 接受 1/true/yes
func GetenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// GetenvMinutes 分钟数环境变量
func GetenvMinutes(key string, def int) time.Duration {
	n := GetenvInt(key, def)
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Minute
}

// GetenvList 逗号分隔列表，去掉空项
func GetenvList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
