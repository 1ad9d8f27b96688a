// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

func sampleOdometry(seq uint64, x float64) nav.Odometry {
	return nav.FromStep(odometry.Step{
		Stamp:    nodeStart.Add(time.Duration(seq) * 100 * time.Millisecond),
		Pose:     odometry.Pose{X: x, Y: 0.5, Heading: math.Pi / 4},
		Velocity: odometry.Velocity{Linear: 0.1, Angular: 0.05},
	}, seq, "odom", "base_link")
}

func TestWebHandler_LatestOdometry(t *testing.T) {
	hub := NewOdometryHub()
	h := NewWebHandler(hub, nil, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/odometry", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hub.Publish(sampleOdometry(4, 1.25))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/odometry", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view odometryView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, uint64(4), view.Seq)
	assert.InDelta(t, 1.25, view.X, 1e-12)
	assert.InDelta(t, 0.5, view.Y, 1e-12)
	assert.InDelta(t, math.Pi/4, view.Heading, 1e-12)
	assert.InDelta(t, 0.1, view.Linear, 1e-12)
	assert.InDelta(t, 0.05, view.Angular, 1e-12)
	assert.Equal(t, "base_link", view.Message.ChildFrameID)
}

func TestWebHandler_Reset(t *testing.T) {
	var got []odometry.Pose
	h := NewWebHandler(NewOdometryHub(), func(p odometry.Pose) error {
		got = append(got, p)
		if p.X < 0 {
			return errors.New("broker unavailable")
		}
		return nil
	}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/odometry/reset", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/odometry/reset",
		strings.NewReader(`{"x": 1, "y": 2, "heading": 0.5}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/odometry/reset", strings.NewReader(`{"x":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/odometry/reset", strings.NewReader(`{"x": -1}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	require.Len(t, got, 3)
	assert.Equal(t, odometry.Pose{}, got[0])
	assert.Equal(t, odometry.Pose{X: 1, Y: 2, Heading: 0.5}, got[1])
}

func TestWebHandler_ResetDisabled(t *testing.T) {
	h := NewWebHandler(NewOdometryHub(), nil, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/odometry/reset", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebHandler_WebsocketStream(t *testing.T) {
	hub := NewOdometryHub()
	hub.Publish(sampleOdometry(1, 0.1))

	srv := httptest.NewServer(NewWebHandler(hub, nil, ""))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/odometry"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var first odometryView
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, uint64(1), first.Seq)

	// The handler subscribes before sending the latest message, so this
	// publish reaches the connection.
	hub.Publish(sampleOdometry(2, 0.2))

	var second odometryView
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, uint64(2), second.Seq)
	assert.InDelta(t, 0.2, second.X, 1e-12)
}
