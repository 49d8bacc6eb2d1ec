package resolution

import (
	"hash/fnv"
	"sort"
	"sync"
)

const lockShards = 64

// keyedLocks serializes ingestion per identifier group. Two records sharing a
// normalized identifier must not race through lookup-then-mutate, or both
// would create a person for the same email. Keys hash onto a fixed shard set;
// shards are always acquired in ascending index order so overlapping groups
// cannot deadlock.
type keyedLocks struct {
	shards [lockShards]sync.Mutex
}

// lock acquires the shards covering keys and returns the matching unlock.
// Empty keys are ignored; with no keys at all it is a no-op.
func (l *keyedLocks) lock(keys ...string) (unlock func()) {
	seen := make(map[int]struct{}, len(keys))
	indexes := make([]int, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(key))
		idx := int(h.Sum32() % lockShards)
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		l.shards[idx].Lock()
	}
	return func() {
		for i := len(indexes) - 1; i >= 0; i-- {
			l.shards[indexes[i]].Unlock()
		}
	}
}
