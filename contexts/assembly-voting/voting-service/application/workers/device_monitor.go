package workers

import (
	"context"
	"log/slog"
	"sync"

	application "quorum/contexts/assembly-voting/voting-service/application"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

// DeviceMonitor polls the hardware controller so operators see connectivity
// loss before a session start fails. Only transitions are logged at info.
type DeviceMonitor struct {
	Device ports.DeviceLink
	Logger *slog.Logger

	mu        sync.Mutex
	known     bool
	connected bool
}

func (m *DeviceMonitor) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(m.Logger)

	status, err := m.Device.CheckDevice(ctx)
	connected := err == nil && status.Connected

	m.mu.Lock()
	changed := !m.known || m.connected != connected
	m.known = true
	m.connected = connected
	m.mu.Unlock()

	if !changed {
		return nil
	}
	if connected {
		logger.Info("polling device reachable",
			"event", "device_monitor_connected",
			"module", "assembly-voting/voting-service",
			"layer", "worker",
			"device", status.DeviceName,
		)
		return nil
	}
	fields := []any{
		"event", "device_monitor_disconnected",
		"module", "assembly-voting/voting-service",
		"layer", "worker",
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	logger.Warn("polling device unreachable", fields...)
	return nil
}
