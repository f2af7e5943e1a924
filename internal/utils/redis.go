package utils

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"atlas-checks/internal/config"
	"atlas-checks/internal/logger"
)

// OpenRedis：使用地址与密码打开 Redis 客户端
// 背景：保留直接传入参数的能力，用于测试与手工注入场景
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：REDIS_ENABLED 不为 true 时返回 nil；REDIS_DB 非法时回退到 0
func OpenRedisFromEnv() *redis.Client {
	if !config.GetenvBool("REDIS_ENABLED", false) {
		return nil
	}
	addr := fmt.Sprintf("%s:%s", config.Getenv("REDIS_HOST", "127.0.0.1"), config.Getenv("REDIS_PORT", "6379"))
	db := config.GetenvInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: config.Getenv("REDIS_PASS", ""), DB: db})
}
