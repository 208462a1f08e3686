// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

// Package api is the JSON REST + WebSocket transport (§6 of the design)
// fronting the Lifecycle Engine, the Data Store Gateway, the Backup
// Manager, and the fetch clients. The core packages below it (lifecycle,
// reconcile, schedule, backup, store) do not import net/http: they return
// apierr.Error values, and this package translates an apierr.Kind into an
// HTTP status code at the handler boundary. internal/auth's key
// middleware writes its own refusal statuses before a handler runs.
//
// It is grounded on the teacher's internal/api package — chi router
// composition, the ResponseWriter/APIResponse envelope, the Chi
// middleware factory, and the WebSocket upgrader pattern from handlers.go
// — generalized from media-server analytics endpoints to Minecraft
// server lifecycle endpoints.
package api
