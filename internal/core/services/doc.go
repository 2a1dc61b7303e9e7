// Package services implements the driving port interfaces.
//
// Services contain the core business logic and orchestrate calls to
// driven ports (adapters). The folder lifecycle orchestrator owns every
// MonitoredFolder state transition; the other services read through the
// same stores but never move a folder between states.
package services
