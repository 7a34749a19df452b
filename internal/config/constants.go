package config

import "time"

// Frame rates.
const (
	NormalFPS   = 60
	ParticleFPS = 30
)

// Desktop limits.
const (
	DefaultWindowWidth  = 20
	DefaultWindowHeight = 6
	MaxLogMessages      = 200
	CPUHistorySize      = 10
)

// Particle field defaults.
const (
	DefaultParticleCount = 40
	DefaultLinkDistance  = 12.0
	ParticleMaxSpeed     = 0.25
)

// Sampling intervals.
const (
	ClockInterval     = time.Second
	TelemetryInterval = 2 * time.Second
)
