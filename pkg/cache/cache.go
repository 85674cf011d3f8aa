// Copyright 2025 Worklane Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines the cache interface. The cache is strictly advisory: a nil
// or unreachable backend must degrade every read to a miss and every write
// or invalidation to a no-op, never to an error visible to callers of the
// domain operations.
type ICache interface {
	// Get fetches a cached value.
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del removes the given keys.
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// DelByPrefix removes every key matching prefix. Used for grouped
	// invalidation where the exact key set is not known to the writer.
	DelByPrefix(ctx context.Context, prefix string) error
	// Expire sets the TTL on an existing key.
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}
