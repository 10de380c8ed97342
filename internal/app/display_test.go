package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
)

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	for _, b := range img.Pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func TestRenderStatus(t *testing.T) {
	waiting := renderStatus(displaySnapshot{})
	assert.Equal(t, 128, waiting.Bounds().Dx())
	assert.Equal(t, 64, waiting.Bounds().Dy())
	assert.NotZero(t, litPixels(waiting))

	live := renderStatus(displaySnapshot{
		pose:      orientation.Display{Position: [3]float64{0.1, 0.2, 0.3}, EulerDeg: [3]float64{0, -45, 0}},
		havePose:  true,
		wrist:     control.Deltas{CalibrationID: uuid.New(), PitchRad: 0.3},
		haveWrist: true,
	})
	assert.NotEqual(t, waiting.Pix, live.Pix)
	assert.NotEqual(t, renderSplash().Pix, live.Pix)
}

func TestDisplayDataSnapshot(t *testing.T) {
	d := &DisplayData{}
	assert.False(t, d.snapshot().havePose)

	d.mu.Lock()
	d.pose = orientation.Display{FPS: 12}
	d.havePose = true
	d.mu.Unlock()

	s := d.snapshot()
	assert.True(t, s.havePose)
	assert.False(t, s.haveWrist)
	assert.Equal(t, 12.0, s.pose.FPS)
}
