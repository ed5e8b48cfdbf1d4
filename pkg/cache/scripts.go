package cache

import "github.com/go-redis/redis/v8"

// KEYS[1] entry, KEYS[2] tracking set; ARGV[1] payload, ARGV[2] ttl seconds.
// The tracking set outlives its entries so invalidation always sees them.
var setTrackedScript = redis.NewScript(`
local ttl = tonumber(ARGV[2])
redis.call('SET', KEYS[1], ARGV[1], 'EX', ttl)
redis.call('SADD', KEYS[2], KEYS[1])
if redis.call('TTL', KEYS[2]) < ttl * 2 then
	redis.call('EXPIRE', KEYS[2], ttl * 2)
end
return 1
`)

// KEYS[1] tracking set. Deletes every member and the set, returning the member count.
var invalidateTrackedScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
for i = 1, #keys, 500 do
	redis.call('DEL', unpack(keys, i, math.min(i + 499, #keys)))
end
redis.call('DEL', KEYS[1])
return #keys
`)
