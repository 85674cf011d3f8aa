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

package queue

import (
	"context"
	"time"

	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/retry"
	"github.com/worklane/worklane/pkg/safe"
)

// InlineDispatcher executes tasks in-process, without redis. It backs
// deployments running with the cache disabled, and tests. Execution is
// detached from the caller's context: a disconnecting client must not
// cancel side effects of an already committed write.
type InlineDispatcher struct {
	registry *Registry
	sync     bool
}

func NewInline(registry *Registry) *InlineDispatcher {
	return &InlineDispatcher{registry: registry}
}

// NewInlineSync runs tasks synchronously; only used by tests that need
// deterministic completion.
func NewInlineSync(registry *Registry) *InlineDispatcher {
	return &InlineDispatcher{registry: registry, sync: true}
}

func (d *InlineDispatcher) Enqueue(_ context.Context, taskType string, payload []byte) error {
	handler, err := d.registry.Handler(taskType)
	if err != nil {
		return err
	}

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		err := retry.Do(ctx, func(ctx context.Context) error {
			return handler(ctx, payload)
		}, retry.WithMaxAttempts(3), retry.WithBackoff(retry.Exponential(100*time.Millisecond, time.Second)))
		if err != nil {
			log.Errorw("side effect task failed",
				"type", taskType,
				"error", err,
			)
		}
	}

	if d.sync {
		safe.Do(run)
		return nil
	}
	safe.Go(run)
	return nil
}
