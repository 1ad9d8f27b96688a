// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// OdometryHub keeps the latest odometry message and fans it out to
// websocket clients.
type OdometryHub struct {
	mu      sync.RWMutex
	last    nav.Odometry
	have    bool
	clients map[chan nav.Odometry]struct{}
}

func NewOdometryHub() *OdometryHub {
	return &OdometryHub{clients: make(map[chan nav.Odometry]struct{})}
}

// Publish records msg as the latest and forwards it to every client. Slow
// clients miss messages rather than blocking the MQTT callback.
func (h *OdometryHub) Publish(msg nav.Odometry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	h.have = true
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Latest returns the most recent message, if any.
func (h *OdometryHub) Latest() (nav.Odometry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *OdometryHub) subscribe() chan nav.Odometry {
	ch := make(chan nav.Odometry, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *OdometryHub) unsubscribe(ch chan nav.Odometry) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// odometryView is the flattened JSON served by /api/odometry.
type odometryView struct {
	Seq     uint64  `json:"seq"`
	Stamp   string  `json:"stamp"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`

	Message nav.Odometry `json:"message"`
}

func newOdometryView(o nav.Odometry) odometryView {
	p := o.PlanarPose()
	return odometryView{
		Seq:     o.Header.Seq,
		Stamp:   o.Header.Stamp,
		X:       p.X,
		Y:       p.Y,
		Heading: p.Heading,
		Linear:  o.Twist.Twist.Linear.X,
		Angular: o.Twist.Twist.Angular.Z,
		Message: o,
	}
}

// NewWebHandler serves the live odometry API. reset may be nil, in which
// case POST /api/odometry/reset is not registered.
func NewWebHandler(hub *OdometryHub, reset func(odometry.Pose) error, staticDir string) http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest odometry
	mux.HandleFunc("GET /api/odometry", func(w http.ResponseWriter, r *http.Request) {
		msg, ok := hub.Latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(newOdometryView(msg)); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	if reset != nil {
		mux.HandleFunc("POST /api/odometry/reset", func(w http.ResponseWriter, r *http.Request) {
			var p odometry.Pose
			if r.ContentLength != 0 {
				if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
					http.Error(w, fmt.Sprintf("invalid pose: %v", err), http.StatusBadRequest)
					return
				}
			}
			if err := reset(p); err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		})
	}

	// Live stream
	mux.HandleFunc("/ws/odometry", func(w http.ResponseWriter, r *http.Request) {
		handleOdometryWS(hub, w, r)
	})

	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func handleOdometryWS(hub *OdometryHub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	if msg, ok := hub.Latest(); ok {
		if err := conn.WriteJSON(newOdometryView(msg)); err != nil {
			return
		}
	}

	// Clients never send anything meaningful; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-ch:
			if err := conn.WriteJSON(newOdometryView(msg)); err != nil {
				return
			}
		}
	}
}

// RunWeb serves the latest odometry over HTTP and a websocket stream.
func RunWeb() error {
	cfg := config.Get()
	hub := NewOdometryHub()

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := bus.SubscribeJSON(client, cfg.TopicOdometry, hub.Publish); err != nil {
		return err
	}

	var reset func(odometry.Pose) error
	if cfg.TopicPoseReset != "" {
		reset = func(p odometry.Pose) error {
			return client.PublishJSON(cfg.TopicPoseReset, false, p)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, NewWebHandler(hub, reset, "web"))
}
