package factory

import (
	"context"

	"go.uber.org/zap"

	adapter "github.com/arjun/deadline-tracker/internal/adapters/calendar"
	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/ports"
)

// CalendarFactory creates the calendar service based on configuration
type CalendarFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCalendarFactory creates a new calendar factory
func NewCalendarFactory(cfg *config.Config, logger *zap.Logger) *CalendarFactory {
	return &CalendarFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCalendarService creates a Google Calendar service, or nil when
// the calendar collaborator is disabled. The engine treats a nil writer
// as "report descriptors without writing them anywhere".
func (f *CalendarFactory) CreateCalendarService(ctx context.Context) (ports.CalendarService, error) {
	calCfg := f.cfg.GetCalendar()
	if !calCfg.Enabled {
		f.logger.Info("Calendar integration disabled")
		return nil, nil
	}

	return adapter.NewGoogleCalendar(
		ctx,
		calCfg.CredentialsFile,
		calCfg.TokenFile,
		calCfg.CalendarID,
		f.logger,
	)
}
