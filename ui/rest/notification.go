package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/imbizlab/groomflo-app/domains/notification"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

type Notification struct {
	Service notification.IDigestUsecase
}

func InitRestNotification(app fiber.Router, service notification.IDigestUsecase) Notification {
	rest := Notification{Service: service}
	app.Post("/businesses/:business_id/notifications/test", rest.SendTest)
	return rest
}

func (h *Notification) SendTest(c *fiber.Ctx) error {
	var request notification.TestEmailRequest
	parseBody(c, &request)

	err := h.Service.SendTest(c.UserContext(), c.Params("business_id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Test email sent to " + request.Email,
	})
}
