package di

import (
	"context"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/factory"
	"github.com/arjun/deadline-tracker/internal/logging"
	"github.com/arjun/deadline-tracker/internal/ports"
	"github.com/arjun/deadline-tracker/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRegistryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCalendarFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register classifiers
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) *core.RuleClassifier {
		return f.CreateRuleClassifier()
	}); err != nil {
		return nil, err
	}

	// Register processed registry
	if err := container.Provide(func(f *factory.RegistryFactory) (core.ProcessedRegistry, error) {
		return f.CreateRegistry()
	}); err != nil {
		return nil, err
	}

	// Register date parser, extractor, dedup guard and event builder
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*core.DateParser, error) {
		loc, err := time.LoadLocation(cfg.GetEngine().Timezone)
		if err != nil {
			logger.Warn("Invalid timezone, falling back to local",
				zap.String("timezone", cfg.GetEngine().Timezone),
				zap.Error(err))
			loc = time.Local
		}
		return core.NewDateParser(logger, loc), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDeadlineExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDedupGuard); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.EventBuilder {
		return core.NewEventBuilder(cfg.GetEngine().Timezone)
	}); err != nil {
		return nil, err
	}

	// Register calendar service
	if err := container.Provide(func(f *factory.CalendarFactory) (ports.CalendarService, error) {
		return f.CreateCalendarService(context.Background())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cal ports.CalendarService) core.EventWriter {
		// A disabled calendar yields a nil writer; the engine then only
		// reports descriptors.
		if cal == nil {
			return nil
		}
		return cal
	}); err != nil {
		return nil, err
	}

	// Register engine service
	if err := container.Provide(core.NewEngineService); err != nil {
		return nil, err
	}

	// Register message ingest
	if err := container.Provide(func(f *factory.IngestFactory) (ports.MessageIngest, error) {
		return f.CreateIngest()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
