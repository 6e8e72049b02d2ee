package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/imbizlab/groomflo-app/domains/health"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/health", handler.CheckAll)
	return handler
}

// CheckAll answers 503 when any component reports an error.
func (h *Health) CheckAll(c *fiber.Ctx) error {
	records, err := h.Service.CheckAll(c.UserContext())
	utils.PanicIfNeeded(err)

	status, code, message := 200, "SUCCESS", "All components healthy"
	for _, r := range records {
		if r.Status == health.StatusError {
			status, code, message = fiber.StatusServiceUnavailable, "UNHEALTHY", "One or more components are unhealthy"
			break
		}
	}
	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: message,
		Results: records,
	})
}
