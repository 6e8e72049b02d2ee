package rest

import (
	"github.com/gofiber/fiber/v2"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

// parseBody decodes the request body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) {
	if len(c.Body()) == 0 {
		return
	}
	if err := c.BodyParser(out); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body: " + err.Error()))
	}
}
