package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/services"
	"github.com/bobby-s-dev/wardrobe-bot/internal/session"
)

// Scheduler runs housekeeping on a cron schedule: it drops expired cached
// forecasts and logs how much state the bot is holding.
type Scheduler struct {
	cron     *cron.Cron
	cache    *services.WeatherCache
	sessions *session.Store
	schedule string
	logger   *zap.Logger

	mu         sync.Mutex
	running    bool
	runs       int
	lastRun    time.Time
	lastPurged int
}

// NewScheduler accepts a nil cache when caching is disabled.
func NewScheduler(cache *services.WeatherCache, sessions *session.Store, schedule string, logger *zap.Logger) *Scheduler {
	cronLog := cronLogger{sugar: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		cache:    cache,
		sessions: sessions,
		schedule: schedule,
		logger:   logger,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runHousekeeping); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// ForceRun performs one housekeeping pass synchronously.
func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering housekeeping")
	s.runHousekeeping()
}

func (s *Scheduler) runHousekeeping() {
	started := time.Now()

	purged := 0
	fields := []zap.Field{zap.Int("pending_sessions", s.sessions.Len())}
	if s.cache != nil {
		purged = s.cache.Purge()
		fields = append(fields,
			zap.Int("purged", purged),
			zap.Any("cache", s.cache.GetStats()))
	}

	s.mu.Lock()
	s.runs++
	s.lastRun = started
	s.lastPurged = purged
	s.mu.Unlock()

	s.logger.Info("Housekeeping completed",
		append(fields, zap.Duration("duration", time.Since(started)))...)
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":     s.running,
		"schedule":    s.schedule,
		"runs":        s.runs,
		"last_run":    s.lastRun,
		"last_purged": s.lastPurged,
	}
	if s.running {
		if entries := s.cron.Entries(); len(entries) > 0 {
			status["next_run"] = entries[0].Next
		}
	}
	return status
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
