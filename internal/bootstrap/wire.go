package bootstrap

import (
	"log/slog"

	"voxstock/internal/audio"
	"voxstock/internal/backend"
	"voxstock/internal/catalog"
	"voxstock/internal/config"
	"voxstock/internal/identity"
	"voxstock/internal/logging"
	"voxstock/internal/ports"
	"voxstock/internal/resilience"
	"voxstock/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.CaptureController
	Workflow   *usecase.ConfirmationWorkflow
	Backend    ports.InventoryBackend
	Catalog    *catalog.Cache
	Logger     *slog.Logger
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(events ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger := logging.New(cfg.Log.Level)
	ident := identity.NewStore(cfg.Identity.Dir, logger)

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Upload: resilience.NewExecutor(resilience.Config{
			Timeout:        cfg.Backend.UploadTimeout,
			BreakerEnabled: true,
		}, logger),
		Read: resilience.NewExecutor(resilience.Config{
			Timeout:          cfg.Backend.RequestTimeout,
			RetryMaxAttempts: cfg.Backend.RetryMaxAttempts,
			BreakerEnabled:   true,
		}, logger),
		Write: resilience.NewExecutor(resilience.Config{
			Timeout:        cfg.Backend.RequestTimeout,
			BreakerEnabled: true,
		}, logger),
	}, ident, logger)

	products := catalog.New(cfg.Catalog.TTL, cfg.Catalog.PurgeInterval)
	workflow := usecase.NewConfirmationWorkflow(client, products, events, logger)

	controller := usecase.NewCaptureController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		client,
		workflow,
		events,
		logger,
		usecase.CaptureConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkInterval:   cfg.Capture.ChunkInterval,
			ReadBufferBytes: cfg.Capture.ReadBufferBytes,
			MinBlobBytes:    cfg.Capture.MinBlobBytes,
		},
	)

	return Services{
		Controller: controller,
		Workflow:   workflow,
		Backend:    client,
		Catalog:    products,
		Logger:     logger,
		Config:     cfg,
	}, nil
}
