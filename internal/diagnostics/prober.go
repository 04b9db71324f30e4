package diagnostics

import (
	"context"
	"math/rand"

	"homedash/internal/model"
)

// Prober decides the health of a device.
type Prober interface {
	Probe(ctx context.Context, device model.Device) string
}

// RandomProber reports healthy or issue with equal probability.
// No device is actually contacted.
type RandomProber struct{}

// Probe implements Prober.
func (RandomProber) Probe(_ context.Context, _ model.Device) string {
	if rand.Intn(2) == 0 {
		return model.HealthHealthy
	}
	return model.HealthIssue
}

// FixedProber always reports the same outcome.
type FixedProber string

// Probe implements Prober.
func (p FixedProber) Probe(_ context.Context, _ model.Device) string {
	return string(p)
}
