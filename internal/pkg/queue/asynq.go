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
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/worklane/worklane/pkg/log"
)

// Config holds queue tuning options.
type Config struct {
	Concurrency int
	MaxRetry    int
	Queue       string
}

func (c *Config) withDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 5
	}
	if c.Queue == "" {
		c.Queue = "default"
	}
}

// redisConnOpt adapts an existing go-redis client to asynq.
type redisConnOpt struct {
	client redis.UniversalClient
}

func (w *redisConnOpt) MakeRedisClient() any {
	return w.client
}

// AsynqDispatcher enqueues tasks onto the redis-backed queue.
type AsynqDispatcher struct {
	client *asynq.Client
	cfg    Config
}

func NewAsynqDispatcher(redisClient redis.UniversalClient, cfg Config) *AsynqDispatcher {
	cfg.withDefaults()
	return &AsynqDispatcher{
		client: asynq.NewClient(&redisConnOpt{client: redisClient}),
		cfg:    cfg,
	}
}

func (d *AsynqDispatcher) Enqueue(ctx context.Context, taskType string, payload []byte) error {
	task := asynq.NewTask(taskType, payload)
	_, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.cfg.Queue),
		asynq.MaxRetry(d.cfg.MaxRetry),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// Server consumes tasks with the handlers from the registry.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(redisClient redis.UniversalClient, registry *Registry, cfg Config) *Server {
	cfg.withDefaults()

	srv := asynq.NewServer(&redisConnOpt{client: redisClient}, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Errorw("side effect task failed",
				"type", task.Type(),
				"error", err,
			)
		}),
	})

	mux := asynq.NewServeMux()
	for _, taskType := range []string{
		TypeAdminCountReconcile,
		TypeCacheInvalidate,
		TypeNotifyStore,
		TypeEmailSend,
	} {
		handler, err := registry.Handler(taskType)
		if err != nil {
			log.Warnw("task type without handler, skipped", "type", taskType)
			continue
		}
		h := handler
		mux.HandleFunc(taskType, func(ctx context.Context, task *asynq.Task) error {
			return h(ctx, task.Payload())
		})
	}

	return &Server{srv: srv, mux: mux}
}

// Start runs the consumer loop on its own goroutines.
func (s *Server) Start() error {
	return s.srv.Start(s.mux)
}

// Shutdown waits for in-flight tasks to finish.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}
