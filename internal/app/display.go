package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// DisplayData holds the latest data for the status panel.
type DisplayData struct {
	mu sync.RWMutex

	pose      orientation.Display
	havePose  bool
	wrist     control.Deltas
	haveWrist bool
}

// displaySnapshot is a lock-free copy of DisplayData for rendering.
type displaySnapshot struct {
	pose      orientation.Display
	havePose  bool
	wrist     control.Deltas
	haveWrist bool
}

func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		pose:      d.pose,
		havePose:  d.havePose,
		wrist:     d.wrist,
		haveWrist: d.haveWrist,
	}
}

// RunDisplay drives an SSD1306 OLED showing wrist deltas and the phone pose.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized on %s", bus)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribe(client, cfg.TopicPoseWorld, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Display
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("display: pose unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.pose = p
		data.havePose = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicWrist, func(_ mqtt.Client, msg mqtt.Message) {
		var w control.Deltas
		if err := json.Unmarshal(msg.Payload(), &w); err != nil {
			log.Printf("display: wrist unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.wrist = w
		data.haveWrist = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		img := renderStatus(data.snapshot())
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func newPanel() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(drawer *font.Drawer, x, y int, text string) {
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}

func renderStatus(s displaySnapshot) *image1bit.VerticalLSB {
	img, drawer := newPanel()

	if !s.haveWrist {
		drawLine(drawer, 0, 13, "Wrist")
		drawLine(drawer, 0, 26, "Not calibrated")
	} else {
		drawLine(drawer, 0, 13, fmt.Sprintf("P:%6.1f R:%6.1f",
			posemath.Degrees(s.wrist.PitchRad), posemath.Degrees(s.wrist.RollRad)))
		drawLine(drawer, 0, 26, "cal "+s.wrist.CalibrationID.String()[:8])
	}

	if !s.havePose {
		drawLine(drawer, 0, 52, "Phone waiting...")
	} else {
		p, e := s.pose.Position, s.pose.EulerDeg
		drawLine(drawer, 0, 39, fmt.Sprintf("%5.2f %5.2f %5.2f", p[0], p[1], p[2]))
		drawLine(drawer, 0, 52, fmt.Sprintf("%5.0f %5.0f %5.0f", e[0], e[1], e[2]))
	}

	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newPanel()
	drawLine(drawer, 10, 26, "Phone Teleop")
	drawLine(drawer, 5, 43, "Waiting for")
	drawLine(drawer, 25, 56, "bridge")
	return img
}
