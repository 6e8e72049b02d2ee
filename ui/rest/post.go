package rest

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

type Post struct {
	Service        domainPost.IPostUsecase
	PublishService domainPost.IPublishUsecase
}

func InitRestPost(app fiber.Router, service domainPost.IPostUsecase, publishService domainPost.IPublishUsecase) Post {
	rest := Post{Service: service, PublishService: publishService}

	business := app.Group("/businesses/:business_id")
	business.Post("/posts/generate-weekly", rest.GenerateWeek)
	business.Get("/posts", rest.ListPosts)
	business.Get("/posts/pending", rest.ListPending)
	business.Get("/posts/scheduled", rest.ListScheduled)
	business.Post("/posts/publish-scheduled", rest.PublishScheduled)
	business.Get("/weeks", rest.ListWeeks)

	app.Get("/posts/:id", rest.GetPost)
	app.Patch("/posts/:id", rest.UpdatePost)
	app.Delete("/posts/:id", rest.DeletePost)
	app.Post("/posts/:id/review", rest.ReviewPost)
	app.Post("/posts/:id/publish", rest.PublishPost)
	return rest
}

func (h *Post) GenerateWeek(c *fiber.Ctx) error {
	var request domainPost.GenerateWeekRequest
	parseBody(c, &request)

	response, err := h.Service.GenerateWeek(c.UserContext(), c.Params("business_id"), request)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  fiber.StatusCreated,
		Code:    "SUCCESS",
		Message: fmt.Sprintf("Generated %d posts for the week of %s", len(response.Posts), response.Week.WeekStarting.Format("2006-01-02")),
		Results: response,
	})
}

func (h *Post) ListPosts(c *fiber.Ctx) error {
	var request domainPost.ListPostsRequest
	if err := c.QueryParser(&request); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError(err.Error()))
	}

	posts, err := h.Service.List(c.UserContext(), c.Params("business_id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Posts fetched",
		Results: posts,
	})
}

func (h *Post) ListPending(c *fiber.Ctx) error {
	posts, err := h.Service.ListPending(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Pending posts fetched",
		Results: posts,
	})
}

func (h *Post) ListScheduled(c *fiber.Ctx) error {
	posts, err := h.Service.ListScheduled(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Scheduled posts fetched",
		Results: posts,
	})
}

func (h *Post) ListWeeks(c *fiber.Ctx) error {
	weeks, err := h.Service.ListWeeks(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Weeks fetched",
		Results: weeks,
	})
}

func (h *Post) PublishScheduled(c *fiber.Ctx) error {
	report, err := h.PublishService.PublishScheduled(c.UserContext(), c.Params("business_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: fmt.Sprintf("Published %d of %d due posts", report.Successful, report.Total),
		Results: report,
	})
}

func (h *Post) GetPost(c *fiber.Ctx) error {
	post, err := h.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post fetched",
		Results: post,
	})
}

func (h *Post) UpdatePost(c *fiber.Ctx) error {
	var request domainPost.UpdatePostRequest
	parseBody(c, &request)

	post, err := h.Service.Update(c.UserContext(), c.Params("id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post updated",
		Results: post,
	})
}

func (h *Post) DeletePost(c *fiber.Ctx) error {
	err := h.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post deleted",
	})
}

func (h *Post) ReviewPost(c *fiber.Ctx) error {
	var request domainPost.ReviewPostRequest
	parseBody(c, &request)

	post, err := h.Service.Review(c.UserContext(), c.Params("id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: fmt.Sprintf("Post marked %s", post.Status),
		Results: post,
	})
}

// PublishPost publishes right away. A platform failure is still a 200 with
// success=false in the result, the post itself is marked failed.
func (h *Post) PublishPost(c *fiber.Ctx) error {
	result, err := h.PublishService.PublishNow(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	message := "Post published"
	if !result.Success {
		message = "Publish failed: " + result.Error
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: result,
	})
}
