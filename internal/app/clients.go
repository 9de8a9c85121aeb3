package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/consciousness-backend/internal/platform/llm"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime/bus"
)

type Clients struct {
	Model llm.Model
	Bus   bus.Bus
	// Redis is nil when the bus is in-process.
	Redis *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	model, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init llm: %w", err)
	}
	info := model.Info()
	log.Info("LLM ready", "provider", info.Provider, "model", info.Model)

	out := Clients{Model: model}
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set; using in-process event bus")
		out.Bus = bus.NewMemoryBus()
		return out, nil
	}
	rb, err := bus.NewRedisBus(ctx, log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}
	out.Bus = rb
	out.Redis = rb.Client()
	return out, nil
}

func (c Clients) Close() error {
	if c.Bus == nil {
		return nil
	}
	return c.Bus.Close()
}
