package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/auth"
	"github.com/lapmart/lapmart/internal/settlement"
)

// DBProvider provides document store access
type DBProvider interface {
	DB() *mongo.Database
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// BusProvider provides the process event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	BusProvider

	TokenService() *auth.TokenService
	RoleLookup() *auth.RoleLookup
	Settlement() *settlement.Service
	SystemStats() *SystemStats

	// EnsureIndexes migrates the unique indexes the handlers rely on
	EnsureIndexes() error
}
