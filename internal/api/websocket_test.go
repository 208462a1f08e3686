// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/msmd/internal/console"
)

func TestCheckWebSocketOriginRejectsMissingOrigin(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/console", nil)

	if h.checkWebSocketOrigin(req) {
		t.Fatal("expected rejection of request with no Origin header")
	}
}

func TestCheckWebSocketOriginAllowsConfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	h.SetAllowedOrigins([]string{"https://console.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req.Header.Set("Origin", "https://console.example.com")
	if !h.checkWebSocketOrigin(req) {
		t.Fatal("expected allow-listed origin to be accepted")
	}

	req.Header.Set("Origin", "https://evil.example.com")
	if h.checkWebSocketOrigin(req) {
		t.Fatal("expected non-allow-listed origin to be rejected")
	}
}

func TestCheckWebSocketOriginOpenWhenUnconfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")

	if !h.checkWebSocketOrigin(req) {
		t.Fatal("expected origin to be accepted when no allow-list is configured")
	}
}

func TestWSSinkEnqueueAfterClose(t *testing.T) {
	sink := newWSSink(nil, console.NewFabric(1, 0))
	sink.Close("test")

	if sink.Enqueue(console.Frame{Type: console.FrameHeartbeat}) {
		t.Fatal("expected Enqueue to fail on a closed sink")
	}
}

func TestWSSinkEnqueueSucceedsWhileOpen(t *testing.T) {
	sink := newWSSink(nil, console.NewFabric(1, 0))

	if !sink.Enqueue(console.Frame{Type: console.FrameHeartbeat}) {
		t.Fatal("expected Enqueue to succeed for a fresh sink")
	}
}
