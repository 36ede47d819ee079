// Package cron implements the ad-hoc job scheduler backing the cron
// tool (spec: action ∈ {add,list,remove,run}). Schedule parsing and
// next-run computation are delegated to robfig/cron/v3.
package cron

import (
	"context"
	"time"
)

// Job is one scheduled shell command.
type Job struct {
	ID       string    `json:"id"`
	Schedule string    `json:"schedule"`
	Command  string    `json:"command"`
	Enabled  bool      `json:"enabled"`
	NextRun  time.Time `json:"next_run,omitempty"`
	LastRun  time.Time `json:"last_run,omitempty"`
	LastErr  string    `json:"last_error,omitempty"`
}

// Executor runs one cron job's command.
type Executor interface {
	Run(ctx context.Context, command string) (output string, err error)
}
