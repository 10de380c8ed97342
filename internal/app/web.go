package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
)

// dashboardState holds the latest values shown by the dashboard.
type dashboardState struct {
	mu        sync.RWMutex
	pose      orientation.Display
	havePose  bool
	wrist     control.Deltas
	haveWrist bool
}

func (s *dashboardState) setPose(d orientation.Display) {
	s.mu.Lock()
	s.pose = d
	s.havePose = true
	s.mu.Unlock()
}

func (s *dashboardState) setWrist(d control.Deltas) {
	s.mu.Lock()
	s.wrist = d
	s.haveWrist = true
	s.mu.Unlock()
}

func (s *dashboardState) handler() http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest pose
	mux.HandleFunc("/api/pose", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writeLatest(w, s.pose, s.havePose)
	})

	// JSON API endpoint: latest wrist deltas
	mux.HandleFunc("/api/wrist", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writeLatest(w, s.wrist, s.haveWrist)
	})

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

func writeLatest(w http.ResponseWriter, v interface{}, have bool) {
	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// RunWeb serves the dashboard API fed from MQTT.
func RunWeb() error {
	cfg := config.Get()
	state := &dashboardState{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribe(client, cfg.TopicPoseWorld, func(_ mqtt.Client, msg mqtt.Message) {
		var d orientation.Display
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		state.setPose(d)
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicWrist, func(_ mqtt.Client, msg mqtt.Message) {
		var d control.Deltas
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("web: wrist unmarshal error: %v", err)
			return
		}
		state.setWrist(d)
	}); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, state.handler())
}
