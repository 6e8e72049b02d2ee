package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Recovery renders panics as a ResponseData envelope. Errors implementing
// GenericError keep their status code; anything else is a 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				genericErr, isGenericError := err.(pkgError.GenericError)
				if isGenericError {
					res.Status = genericErr.StatusCode()
					res.Code = genericErr.ErrCode()
					res.Message = genericErr.Error()
				}

				entry := logrus.WithFields(logrus.Fields{
					"method": ctx.Method(),
					"path":   ctx.Path(),
					"status": res.Status,
				})
				if rid, ok := ctx.Locals("requestid").(string); ok && rid != "" {
					entry = entry.WithField("request_id", rid)
				}
				if res.Status >= 500 {
					entry.Errorf("[REST] Panic recovered: %v", err)
				} else {
					entry.Debugf("[REST] Request rejected: %v", err)
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
