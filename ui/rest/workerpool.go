package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/imbizlab/groomflo-app/pkg/jobpool"
)

// StatsProvider is satisfied by *jobpool.Pool.
type StatsProvider interface {
	GetStats() jobpool.PoolStats
}

type WorkerPool struct {
	Pool StatsProvider
}

func InitRestWorkerPool(app fiber.Router, pool StatsProvider) WorkerPool {
	handler := WorkerPool{Pool: pool}
	app.Get("/publisher/pool", handler.GetStats)
	return handler
}

// GetStats returns real-time publish pool statistics.
func (h *WorkerPool) GetStats(c *fiber.Ctx) error {
	if h.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Publish worker pool not running in this process",
		})
	}
	return c.JSON(h.Pool.GetStats())
}
