package rest

import (
	"github.com/gofiber/fiber/v2"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

type Business struct {
	Service domainBusiness.IBusinessUsecase
}

func InitRestBusiness(app fiber.Router, service domainBusiness.IBusinessUsecase) Business {
	rest := Business{Service: service}
	app.Post("/businesses", rest.CreateBusiness)
	app.Get("/businesses", rest.ListBusinesses)
	app.Get("/businesses/:business_id", rest.GetBusiness)
	app.Patch("/businesses/:business_id", rest.UpdateBusiness)
	app.Delete("/businesses/:business_id", rest.DeleteBusiness)
	app.Post("/businesses/:business_id/facebook/validate", rest.ValidateFacebook)
	return rest
}

func (h *Business) CreateBusiness(c *fiber.Ctx) error {
	var request domainBusiness.CreateBusinessRequest
	parseBody(c, &request)

	business, err := h.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  fiber.StatusCreated,
		Code:    "SUCCESS",
		Message: "Business created",
		Results: business,
	})
}

func (h *Business) ListBusinesses(c *fiber.Ctx) error {
	businesses, err := h.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Businesses fetched",
		Results: businesses,
	})
}

func (h *Business) GetBusiness(c *fiber.Ctx) error {
	business, err := h.Service.Get(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Business fetched",
		Results: business,
	})
}

func (h *Business) UpdateBusiness(c *fiber.Ctx) error {
	var request domainBusiness.UpdateBusinessRequest
	parseBody(c, &request)

	business, err := h.Service.Update(c.UserContext(), c.Params("business_id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Business updated",
		Results: business,
	})
}

func (h *Business) DeleteBusiness(c *fiber.Ctx) error {
	err := h.Service.Delete(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Business deleted",
	})
}

func (h *Business) ValidateFacebook(c *fiber.Ctx) error {
	result, err := h.Service.ValidateFacebook(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: result.Message,
		Results: result,
	})
}
