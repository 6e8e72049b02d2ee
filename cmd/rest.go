package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	coreconfig "github.com/imbizlab/groomflo-app/core/config"
	"github.com/imbizlab/groomflo-app/ui/rest"
	"github.com/imbizlab/groomflo-app/ui/rest/middleware"
	"github.com/imbizlab/groomflo-app/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the scheduling API over http",
	Long:  `Serves the business and post API, and runs the publish worker and the daily digest in the same process unless --no-workers is set.`,
	Run:   restServer,
}

func init() {
	restCmd.Flags().Bool("no-workers", false, "serve the API only, without the publish worker and the digest scheduler")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := coreconfig.Global
	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required. Nothing should be public; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}

	account := make(map[string]string)
	for _, basicAuth := range cfg.App.BasicAuth {
		ba := strings.SplitN(basicAuth, ":", 2)
		if len(ba) != 2 || ba[0] == "" {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}

	initApp()
	if noWorkers, _ := cmd.Flags().GetBool("no-workers"); !noWorkers {
		startBackground()
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "GroomFlo Scheduler",
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:;",
		// Graph API fetches generated images from /statics.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	// Generated images, public so Facebook can fetch them
	app.Static(cfg.App.BasePath+"/statics", cfg.Paths.Statics)

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	apiGroup.Use(basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	}))

	var pinger usecase.Pinger
	if vkClient != nil {
		pinger = vkClient
	}
	var reporter usecase.TickReporter
	var stats rest.StatsProvider
	if publishWorker != nil {
		reporter = publishWorker
		stats = publishPool
	}
	healthUsecase := usecase.NewHealthService(db, pinger, reporter)

	rest.InitRestBusiness(apiGroup, businessUsecase)
	rest.InitRestPost(apiGroup, postUsecase, publishUsecase)
	rest.InitRestNotification(apiGroup, digestUsecase)
	rest.InitRestHealth(apiGroup, healthUsecase)
	rest.InitRestWorkerPool(apiGroup, stats)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
