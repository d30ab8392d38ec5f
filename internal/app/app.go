package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/audit"
	"github.com/lapmart/lapmart/internal/auth"
	"github.com/lapmart/lapmart/internal/settlement"
)

type Application struct {
	appConfig     *config.AppConfig
	mongoClient   *mongo.Client
	database      *mongo.Database
	sched         *cron.Cron
	bus           EventBus.Bus
	tokenService  *auth.TokenService
	roleLookup    *auth.RoleLookup
	settlementSvc *settlement.Service
	auditRecorder *audit.Recorder
	sysinfo       *SystemStats
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *mongo.Database {
	return a.database
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *mongo.Database) {
	a.database = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Connect to the document store
	a.mongoClient, a.database = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, name: %s", cfg.Database.Name)

	// Ensure unique indexes exist before serving any writes; index errors
	// are the only uniqueness signal the handlers rely on.
	if err := a.EnsureIndexes(); err != nil {
		zap.S().Errorf("index migration failed: %v", err)
	}

	a.checkSuper()

	a.bus = EventBus.New()
	recorder, err := audit.NewRecorder(a.bus, a.database)
	if err != nil {
		zap.S().Errorf("audit recorder init failed: %v", err)
	}
	a.auditRecorder = recorder

	a.tokenService = auth.NewTokenService(cfg.Web.JwtSecret)
	a.roleLookup = auth.NewRoleLookup(NewMongoUserRepository(a.database))

	a.settlementSvc = settlement.NewService(
		&settlement.MongoPaymentRepository{DB: a.database},
		&settlement.MongoProductRepository{DB: a.database},
		&settlement.MongoBookingRepository{DB: a.database},
	)

	a.sysinfo = NewSystemStats()

	a.initJob()
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Bus returns the process event bus
func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// TokenService returns the token issuer/verifier
func (a *Application) TokenService() *auth.TokenService {
	return a.tokenService
}

// RoleLookup returns the role resolver used by guards
func (a *Application) RoleLookup() *auth.RoleLookup {
	return a.roleLookup
}

// Settlement returns the settlement service
func (a *Application) Settlement() *settlement.Service {
	return a.settlementSvc
}

// SystemStats returns the latest monitor snapshot
func (a *Application) SystemStats() *SystemStats {
	return a.sysinfo
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.settlementSvc != nil {
		a.settlementSvc.Stop()
	}

	if a.auditRecorder != nil {
		a.auditRecorder.Stop()
	}

	if a.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.mongoClient.Disconnect(ctx)
	}

	_ = zap.L().Sync()
}
