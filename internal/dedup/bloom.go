package dedup

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// bloomPositions：FNV64a 加索引扰动生成 k 个位图位置
// 约束：m 取 2 的幂分布更均匀；m、k 决定误判率
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(uint32(h.Sum64() % uint64(m)))
	}
	return pos
}

// bloomScript：逐位 SETBIT 并读取旧值，任一旧值为 0 即首次出现，随后续期；整段在服务端原子执行
var bloomScript = redis.NewScript(`
local first = 0
for i = 2, #ARGV do
  if redis.call("SETBIT", KEYS[1], ARGV[i], 1) == 0 then
    first = 1
  end
end
if first == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return first
`)

// bloomCheckAndSet：全部位已置位视为见过；否则置位并续期
// 返回：true 表示首次见到；rc 为 nil 时总是 true
func bloomCheckAndSet(ctx context.Context, rc *redis.Client, key string, positions []int64, ttl time.Duration) (bool, error) {
	if rc == nil {
		return true, nil
	}
	args := make([]interface{}, 0, len(positions)+1)
	args = append(args, ttl.Milliseconds())
	for _, p := range positions {
		args = append(args, p)
	}
	first, err := bloomScript.Run(ctx, rc, []string{key}, args...).Int()
	if err != nil {
		return true, err
	}
	return first == 1, nil
}
