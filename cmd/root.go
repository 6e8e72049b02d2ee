package cmd

import (
	"context"
	"time"

	coreconfig "github.com/imbizlab/groomflo-app/core/config"
	coreDB "github.com/imbizlab/groomflo-app/core/database"
	"github.com/imbizlab/groomflo-app/digest"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainContent "github.com/imbizlab/groomflo-app/domains/content"
	domainNotification "github.com/imbizlab/groomflo-app/domains/notification"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/imbizlab/groomflo-app/infrastructure/valkey"
	"github.com/imbizlab/groomflo-app/integrations/closeio"
	"github.com/imbizlab/groomflo-app/integrations/facebook"
	"github.com/imbizlab/groomflo-app/integrations/gemini"
	openaiGen "github.com/imbizlab/groomflo-app/integrations/openai"
	"github.com/imbizlab/groomflo-app/pkg/crypto"
	"github.com/imbizlab/groomflo-app/pkg/jobpool"
	"github.com/imbizlab/groomflo-app/pkg/utils"
	"github.com/imbizlab/groomflo-app/planner"
	"github.com/imbizlab/groomflo-app/publisher"
	"github.com/imbizlab/groomflo-app/repository"
	"github.com/imbizlab/groomflo-app/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	db       *gorm.DB
	vkClient *valkey.Client
	serverID string

	// Repository
	businessRepo domainBusiness.IBusinessRepository
	postRepo     domainPost.IPostRepository
	executor     *publisher.Executor

	// Usecase
	businessUsecase domainBusiness.IBusinessUsecase
	postUsecase     domainPost.IPostUsecase
	publishUsecase  domainPost.IPublishUsecase
	digestUsecase   domainNotification.IDigestUsecase

	// Background
	publishPool      *jobpool.Pool
	publishWorker    *publisher.Worker
	digestScheduler  *digest.Scheduler
	cancelBackground context.CancelFunc
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groomflo",
	Short: "Weekly social post scheduler",
	Long: `Generates a week of Facebook posts for each business, keeps them pending until
someone approves them and publishes the approved ones at their scheduled time.`,
}

// flag name -> viper key. Env vars win over flag defaults, explicit flags win over env.
var flagBindings = map[string]string{
	"port":        "app_port",
	"debug":       "app_debug",
	"base-path":   "app_base_path",
	"db-driver":   "db_driver",
	"db-name":     "db_name",
	"ai-provider": "ai_provider",
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	if _, err := coreconfig.LoadConfig(); err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig)
}

func initFlags() {
	cfg := coreconfig.Global
	flags := rootCmd.PersistentFlags()

	flags.StringP("port", "p", cfg.App.Port, "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", cfg.App.Debug, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.StringSliceP("basic-auth", "b", cfg.App.BasicAuth, "basic auth credential | -b=yourUsername:yourPassword")
	flags.String("base-path", cfg.App.BasePath, `base path for subpath deployment --base-path <string> | example: --base-path="/groomflo"`)
	flags.String("db-driver", cfg.Database.Driver, "database driver --db-driver <sqlite|postgres>")
	flags.String("db-name", cfg.Database.Name, "sqlite file or postgres database name --db-name <string>")
	flags.String("ai-provider", cfg.AI.Provider, "content provider --ai-provider <openai|gemini>")

	for name, key := range flagBindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			logrus.Fatalf("[CONFIG] bind flag %s: %v", name, err)
		}
	}
}

// initEnvConfig resolves flags and environment into coreconfig.Global.
func initEnvConfig() {
	cfg := coreconfig.Global

	cfg.App.Port = viper.GetString("app_port")
	cfg.App.Debug = viper.GetBool("app_debug")
	cfg.App.BasePath = viper.GetString("app_base_path")
	cfg.Database.Driver = viper.GetString("db_driver")
	cfg.Database.Name = viper.GetString("db_name")
	cfg.AI.Provider = viper.GetString("ai_provider")

	// Comma separated env values do not survive viper's slice cast, so only
	// an explicit flag replaces APP_BASIC_AUTH.
	if rootCmd.PersistentFlags().Changed("basic-auth") {
		if credentials, err := rootCmd.PersistentFlags().GetStringSlice("basic-auth"); err == nil {
			cfg.App.BasicAuth = credentials
		}
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Debugf("[CONFIG] %v", viper.AllSettings())
}

// initApp opens storage and builds every usecase. Commands that do not touch
// the database (keygen) never call it.
func initApp() {
	cfg := coreconfig.Global
	ctx := context.Background()

	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics, cfg.Paths.Images); err != nil {
		logrus.Fatalln(err)
	}

	cipher, err := crypto.NewTokenCipher(cfg.Security.EncryptionKey)
	if err != nil {
		logrus.Fatalf("[APP] %v. Generate one with `groomflo keygen` and set APP_ENCRYPTION_KEY.", err)
	}

	db, err = coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[DB] %v", err)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logrus.Fatalf("[DB] migration failed: %v", err)
	}
	logrus.Infof("[DB] %s database ready (%s)", cfg.Database.Driver, cfg.Database.Name)

	businessRepo = repository.NewBusinessGormRepository(db, cipher)
	postRepo = repository.NewPostGormRepository(db)

	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
	if cfg.Valkey.Enabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[VALKEY] unavailable, every process will run its own publish tick: %v", err)
		} else {
			vkClient = client
			logrus.Infof("[VALKEY] connected to %s as %s", cfg.Valkey.Address, serverID)
		}
	}

	window, err := planner.ParseWindow(cfg.Scheduler.WindowStart, cfg.Scheduler.WindowEnd)
	if err != nil {
		logrus.Fatalf("[PLANNER] %v", err)
	}
	weekPlanner, err := planner.New(window, nil)
	if err != nil {
		logrus.Fatalf("[PLANNER] %v", err)
	}

	poster := facebook.NewClient(cfg.Facebook.GraphURL, nil)
	notifier := closeio.NewClient(cfg.Notifications.CloseAPIKey, cfg.Notifications.CloseURL, nil)
	if !notifier.Enabled() {
		logrus.Warn("[DIGEST] CLOSE_API_KEY is not set, daily digest emails are disabled")
	}

	executor = publisher.NewExecutor(postRepo, poster, cfg.Scheduler.PublishTimeout)

	businessUsecase = usecase.NewBusinessService(businessRepo, poster, cfg.Scheduler.DefaultTimezone)
	postUsecase = usecase.NewPostService(businessRepo, postRepo, newGenerator(ctx, cfg), weekPlanner)
	publishUsecase = usecase.NewPublishService(businessRepo, postRepo, executor)
	digestUsecase = usecase.NewDigestService(businessRepo, postRepo, notifier)
}

// newGenerator returns nil when the provider is not configured; week
// generation then fails with a generation error instead of the process.
func newGenerator(ctx context.Context, cfg *coreconfig.Config) domainContent.IContentGenerator {
	switch cfg.AI.Provider {
	case "gemini":
		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:         cfg.AI.GeminiKey,
			TextModel:      cfg.AI.GeminiModel,
			ImageModel:     cfg.AI.ImagenModel,
			GenerateImages: cfg.AI.GenerateImgs,
			Concurrency:    cfg.AI.Concurrency,
		}, gemini.ImageStore{
			Dir:       cfg.Paths.Images,
			PublicURL: cfg.App.BaseUrl + cfg.App.BasePath + "/statics/images",
		})
		if err != nil {
			logrus.Warnf("[AI] gemini disabled: %v", err)
			return nil
		}
		logrus.Infof("[AI] using gemini (%s, %s)", cfg.AI.GeminiModel, cfg.AI.ImagenModel)
		return generator
	case "openai", "":
		generator, err := openaiGen.NewGenerator(openaiGen.Config{
			APIKey:         cfg.AI.OpenAIKey,
			BaseURL:        cfg.AI.OpenAIURL,
			TextModel:      cfg.AI.TextModel,
			ImageModel:     cfg.AI.ImageModel,
			GenerateImages: cfg.AI.GenerateImgs,
			Concurrency:    cfg.AI.Concurrency,
		})
		if err != nil {
			logrus.Warnf("[AI] openai disabled: %v", err)
			return nil
		}
		logrus.Infof("[AI] using openai (%s, %s)", cfg.AI.TextModel, cfg.AI.ImageModel)
		return generator
	default:
		logrus.Warnf("[AI] unknown provider %q, week generation is disabled", cfg.AI.Provider)
		return nil
	}
}

// startBackground runs the publish pool, the publish worker and the digest
// scheduler until StopApp.
func startBackground() {
	cfg := coreconfig.Global
	ctx, cancel := context.WithCancel(context.Background())
	cancelBackground = cancel

	publishPool = jobpool.NewPool("PUBLISH", cfg.Scheduler.Workers, cfg.Scheduler.QueueSize)
	publishPool.Start(ctx)

	var locker publisher.Locker
	lockKey := "publisher:tick"
	if vkClient != nil {
		locker = vkClient
		lockKey = vkClient.Key("publisher", "tick")
	}
	publishWorker = publisher.NewWorker(businessRepo, postRepo, executor, publishPool, locker, publisher.Config{
		Interval: cfg.Scheduler.PublishInterval,
		ClaimTTL: cfg.Scheduler.ClaimTTL,
		LockKey:  lockKey,
		Owner:    serverID,
	})
	publishWorker.Start(ctx)
	logrus.Infof("[PUBLISHER] worker started, every %s with %d workers", cfg.Scheduler.PublishInterval, cfg.Scheduler.Workers)

	loc, err := time.LoadLocation(cfg.Scheduler.DefaultTimezone)
	if err != nil {
		logrus.Warnf("[DIGEST] unknown timezone %q, using UTC: %v", cfg.Scheduler.DefaultTimezone, err)
		loc = time.UTC
	}
	digestScheduler, err = digest.NewScheduler(cfg.Scheduler.DigestCron, loc, func(ctx context.Context, day time.Time) error {
		report, err := digestUsecase.SendDailyDigests(ctx, day)
		if err != nil {
			return err
		}
		logrus.Infof("[DIGEST] %s: %d sent, %d failed, %d skipped", day.Format("2006-01-02"), report.Sent, report.Failed, report.Skipped)
		return nil
	})
	if err != nil {
		logrus.Fatalf("[DIGEST] %v", err)
	}
	digestScheduler.Start(ctx)
	logrus.Infof("[DIGEST] scheduled %q, next run %s", cfg.Scheduler.DigestCron, digestScheduler.Next(time.Now()).Format(time.RFC1123))
}

// StopApp stops background work and closes connections.
func StopApp() {
	logrus.Info("[APP] Stopping background services...")
	if digestScheduler != nil {
		digestScheduler.Stop()
	}
	if publishWorker != nil {
		publishWorker.Stop()
	}
	if publishPool != nil {
		publishPool.Stop()
	}
	if cancelBackground != nil {
		cancelBackground()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logrus.Info("[APP] Stopped")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}
