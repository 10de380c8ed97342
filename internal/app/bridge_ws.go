// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/phone_teleop/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the phone page is served from another origin
	},
}

// wsInbound is either a pose message or a session command from the phone.
type wsInbound struct {
	Action string `json:"action,omitempty"` // calibrate, reset
	orientation.Message
}

// WSResponse is sent back to the phone when something goes wrong or a
// command is applied.
type WSResponse struct {
	Type    string `json:"type"` // ok, error
	Message string `json:"message,omitempty"`
}

// ServeWS reads pose messages from one phone connection until it closes.
func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("bridge: phone connected from %s", r.RemoteAddr)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("bridge: websocket error: %v", err)
			}
			log.Printf("bridge: phone %s disconnected", r.RemoteAddr)
			return
		}

		var in wsInbound
		if err := json.Unmarshal(payload, &in); err != nil {
			b.replyWS(conn, WSResponse{Type: "error", Message: err.Error()})
			continue
		}

		if in.Action != "" {
			if err := b.HandleCommand(in.Action); err != nil {
				b.replyWS(conn, WSResponse{Type: "error", Message: err.Error()})
			} else {
				b.replyWS(conn, WSResponse{Type: "ok", Message: in.Action})
			}
			continue
		}

		if err := b.HandlePhone(in.Message, time.Now()); err != nil {
			b.replyWS(conn, WSResponse{Type: "error", Message: err.Error()})
		}
	}
}

func (b *Bridge) replyWS(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("bridge: websocket write error: %v", err)
	}
}
