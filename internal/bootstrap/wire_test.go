package bootstrap

import (
	"testing"
	"time"

	"voxstock/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	t.Setenv("VOXSTOCK_IDENTITY_DIR", t.TempDir())

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Controller == nil {
		t.Fatalf("expected controller")
	}
	if services.Workflow == nil {
		t.Fatalf("expected workflow")
	}
	if services.Backend == nil {
		t.Fatalf("expected backend client")
	}
	if services.Catalog == nil {
		t.Fatalf("expected catalog cache")
	}
	if services.Logger == nil {
		t.Fatalf("expected logger")
	}
}

func TestBuildHonorsEnvironment(t *testing.T) {
	t.Setenv("VOXSTOCK_IDENTITY_DIR", t.TempDir())
	t.Setenv("VOXSTOCK_BACKEND_URL", "http://10.0.0.5:9000")
	t.Setenv("VOXSTOCK_UPLOAD_TIMEOUT_MS", "45000")

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Config.Backend.BaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("unexpected base URL: %q", services.Config.Backend.BaseURL)
	}
	if services.Config.Backend.UploadTimeout != 45*time.Second {
		t.Fatalf("unexpected upload timeout: %s", services.Config.Backend.UploadTimeout)
	}
}

type noopEventSink struct{}

func (noopEventSink) CaptureStateChanged(_ domain.Status, _ domain.StateReason) {}
func (noopEventSink) RecordingTick(_ time.Duration)                             {}
func (noopEventSink) CommandReady(_ domain.ReviewPresentation)                  {}
func (noopEventSink) ReviewClosed(_ domain.StateReason)                         {}
func (noopEventSink) DataChanged(_ domain.RefreshScope)                         {}
func (noopEventSink) SessionError(_ domain.ErrorCode, _ string)                 {}
