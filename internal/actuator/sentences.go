// Package actuator talks to the forearm/wrist microcontroller over a serial
// line. Frames are NMEA-0183 sentences with the "TL" talker:
//
//	$TLWRS,<seq>,<pitch_rad>,<roll_rad>*HH   wrist command (bridge -> arm)
//	$TLARM,<w>,<x>,<y>,<z>*HH                forearm orientation (arm -> bridge)
package actuator

import (
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"gonum.org/v1/gonum/num/quat"
)

const (
	// TalkerTeleop is the talker id of every sentence on the link.
	TalkerTeleop = "TL"
	// TypeWrist is a wrist joint command.
	TypeWrist = "WRS"
	// TypeArm is a forearm orientation report.
	TypeArm = "ARM"
)

// WristCommand is a parsed $TLWRS sentence.
type WristCommand struct {
	nmea.BaseSentence
	Seq      int64
	PitchRad float64
	RollRad  float64
}

// ArmOrientation is a parsed $TLARM sentence. Quat is scalar-first.
type ArmOrientation struct {
	nmea.BaseSentence
	Quat quat.Number
}

func init() {
	nmea.MustRegisterParser(TypeWrist, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return WristCommand{
			BaseSentence: s,
			Seq:          p.Int64(0, "seq"),
			PitchRad:     p.Float64(1, "pitch"),
			RollRad:      p.Float64(2, "roll"),
		}, p.Err()
	})
	nmea.MustRegisterParser(TypeArm, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return ArmOrientation{
			BaseSentence: s,
			Quat: quat.Number{
				Real: p.Float64(0, "w"),
				Imag: p.Float64(1, "x"),
				Jmag: p.Float64(2, "y"),
				Kmag: p.Float64(3, "z"),
			},
		}, p.Err()
	})
}

// EncodeWristCommand frames a wrist command, including the trailing CRLF.
func EncodeWristCommand(seq int64, pitchRad, rollRad float64) string {
	return frame(TypeWrist, strconv.FormatInt(seq, 10), ftoa(pitchRad), ftoa(rollRad))
}

// EncodeArmOrientation frames a forearm orientation report.
func EncodeArmOrientation(q quat.Number) string {
	return frame(TypeArm, ftoa(q.Real), ftoa(q.Imag), ftoa(q.Jmag), ftoa(q.Kmag))
}

// Parse decodes one line from the link.
func Parse(line string) (nmea.Sentence, error) {
	s, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("actuator: parse %q: %w", line, err)
	}
	return s, nil
}

func frame(typ string, fields ...string) string {
	body := TalkerTeleop + typ + "," + strings.Join(fields, ",")
	return "$" + body + "*" + nmea.Checksum(body) + "\r\n"
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
