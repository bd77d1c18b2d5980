package factory

import (
	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/adapters/ingest"
	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/ports"
)

// IngestFactory creates message ingestion adapters based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.EngineService
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger, service *core.EngineService) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateIngest creates the SMTP message ingestion adapter
func (f *IngestFactory) CreateIngest() (ports.MessageIngest, error) {
	server := f.cfg.GetServer()
	return ingest.NewSMTPIngest(
		f.service,
		f.logger,
		server.ListenAddress,
		server.Domain,
		server.MaxMessageBytes,
	), nil
}
