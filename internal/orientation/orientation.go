package orientation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// ErrInvalidMessage is returned for pose messages that cannot be turned into
// a rigid transform.
var ErrInvalidMessage = errors.New("invalid pose message")

// Position is the phone position in meters, ARCore right-up-back frame.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a scalar-last orientation as sent by the phone.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Message is one pose update from the phone.
type Message struct {
	Position    Position   `json:"position"`
	Orientation Quaternion `json:"orientation"`
	FPS         float64    `json:"fps"`
}

// Source is anything that can provide phone pose messages over time.
type Source interface {
	Next() (Message, error)
}

// DecodeMessage parses and validates a JSON pose message.
func DecodeMessage(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks that all numbers are finite and the quaternion is non-zero.
func (m Message) Validate() error {
	vals := []float64{
		m.Position.X, m.Position.Y, m.Position.Z,
		m.Orientation.X, m.Orientation.Y, m.Orientation.Z, m.Orientation.W,
		m.FPS,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidMessage)
		}
	}
	if quat.Abs(m.Quat()) == 0 {
		return fmt.Errorf("%w: zero orientation quaternion", ErrInvalidMessage)
	}
	return nil
}

// Quat returns the orientation in scalar-first form.
func (m Message) Quat() quat.Number {
	o := m.Orientation
	return posemath.QuatFromXYZW([4]float64{o.X, o.Y, o.Z, o.W})
}
