package app

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
)

// MongoUserRepository adapts the users collection to the auth role-lookup seam.
type MongoUserRepository struct {
	db *mongo.Database
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db}
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Collection(domain.User{}.CollectionName()).
		FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SystemSnapshot is one monitor reading served by the admin dashboard.
type SystemSnapshot struct {
	CpuPercent  float64   `json:"cpu_percent"`
	MemUsedMB   uint64    `json:"mem_used_mb"`
	ProcCpuUse  float64   `json:"proc_cpu_percent"`
	ProcMemMB   uint64    `json:"proc_mem_mb"`
	CollectedAt time.Time `json:"collected_at"`
}

// SystemStats holds the latest monitor reading under a lock.
type SystemStats struct {
	mu  sync.RWMutex
	cur SystemSnapshot
}

func NewSystemStats() *SystemStats {
	return &SystemStats{}
}

func (s *SystemStats) Snapshot() SystemSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Re-drive settlements stuck before the terminal step
	_, err = a.sched.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		a.settlementSvc.RepairPending(ctx)
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := a.auditRecorder.DeleteOlderThan(ctx, 365*24*time.Hour); err != nil {
			zap.S().Errorf("audit retention cleanup error %s", err.Error())
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	a.sysinfo.mu.Lock()
	defer a.sysinfo.mu.Unlock()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		a.sysinfo.cur.CpuPercent = _cpuuse[0]
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		a.sysinfo.cur.MemUsedMB = _meminfo.Used / 1024 / 1024
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if cpuuse, err := p.CPUPercent(); err == nil {
			a.sysinfo.cur.ProcCpuUse = cpuuse
		}
		if meminfo, err := p.MemoryInfo(); err == nil {
			a.sysinfo.cur.ProcMemMB = meminfo.RSS / 1024 / 1024
		}
	}

	a.sysinfo.cur.CollectedAt = time.Now()
}
