// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package models defines the entity types shared by the store gateway, the
// lifecycle engine, and the HTTP API. Every type here is a plain value
// struct: nothing in this package holds a live database handle or an OS
// resource, so any snapshot returned from internal/store remains valid
// after the scope that produced it has closed.
package models

import "time"

// Distribution identifies the kind of Minecraft server jar a ManagedServer
// runs.
type Distribution string

const (
	DistributionPaper   Distribution = "paper"
	DistributionVanilla  Distribution = "vanilla"
	DistributionFabric  Distribution = "fabric"
	DistributionPurpur  Distribution = "purpur"
	DistributionForge   Distribution = "forge"
)

// ServerNamePattern is the validation pattern every ManagedServer name must
// satisfy: 1-64 characters of letters, digits, underscore or hyphen.
const ServerNamePattern = `^[A-Za-z0-9_-]{1,64}$`

// ManagedServer is a snapshot of one supervised Minecraft server process.
// It is returned by every internal/store finder and never carries a live
// database or OS handle.
type ManagedServer struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name" validate:"required,max=64,servername"`

	Distribution    Distribution `json:"distribution" db:"distribution" validate:"required,oneof=paper vanilla fabric purpur forge"`
	Version         string       `json:"version" db:"version" validate:"required"`
	WorkingDir      string       `json:"working_dir" db:"working_dir" validate:"required"`
	JarName         string       `json:"jar_name" db:"jar_name"`
	Port            int          `json:"port" db:"port" validate:"required,min=1,max=65535"`
	HeapSize        string       `json:"heap_size" db:"heap_size" validate:"required"`
	RuntimePath     string       `json:"runtime_path,omitempty" db:"runtime_path"`
	RuntimeArgs     []string     `json:"runtime_args,omitempty" db:"-"`
	RestartOnCrash  bool         `json:"restart_on_crash" db:"restart_on_crash"`

	Running     bool       `json:"running" db:"running"`
	PID         *int       `json:"pid,omitempty" db:"pid"`
	LastStarted *time.Time `json:"last_started,omitempty" db:"last_started"`
	LastStopped *time.Time `json:"last_stopped,omitempty" db:"last_stopped"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateServerSpec is the input to the Lifecycle Engine's create operation.
type CreateServerSpec struct {
	Name         string       `json:"name" validate:"required,max=64,servername"`
	Distribution Distribution `json:"distribution" validate:"required,oneof=paper vanilla fabric purpur forge"`
	Version      string       `json:"version" validate:"required"`
	Port         int          `json:"port" validate:"required,min=1,max=65535"`
	HeapSize     string       `json:"heap_size" validate:"required"`
	RuntimePath  string       `json:"runtime_path,omitempty"`
	RuntimeArgs  []string     `json:"runtime_args,omitempty"`
}

// ImportServerSpec is the input to the Lifecycle Engine's import operation:
// it points at an existing working directory instead of allocating a fresh
// one under the data root.
type ImportServerSpec struct {
	Name        string       `json:"name" validate:"required,max=64,servername"`
	WorkingDir  string       `json:"working_dir" validate:"required"`
	Distribution Distribution `json:"distribution" validate:"required,oneof=paper vanilla fabric purpur forge"`
	Version     string       `json:"version" validate:"required"`
	Port        int          `json:"port" validate:"required,min=1,max=65535"`
	HeapSize    string       `json:"heap_size" validate:"required"`
	RuntimePath string       `json:"runtime_path,omitempty"`
}

// StatusSnapshot is the result of the Lifecycle Engine's status operation,
// reconciled against the OS process table inline.
type StatusSnapshot struct {
	ServerID      int64   `json:"server_id"`
	Running       bool    `json:"running"`
	PID           *int    `json:"pid,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryBytes   uint64  `json:"memory_bytes"`
	Inconsistent  bool    `json:"inconsistent,omitempty"`
}
