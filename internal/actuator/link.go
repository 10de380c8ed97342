// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/phone_teleop/internal/control"
)

// Link is a bidirectional connection to the arm controller.
type Link struct {
	rw io.ReadWriteCloser

	mu  sync.Mutex // serializes writes and seq
	seq int64
}

// NewLink wraps an already open stream.
func NewLink(rw io.ReadWriteCloser) *Link {
	return &Link{rw: rw}
}

// OpenSerial opens the arm controller's serial port, 8N1.
func OpenSerial(portName string, baudRate int) (*Link, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("actuator: open %s: %w", portName, err)
	}
	log.Printf("actuator: serial port opened on %s at %d baud", portName, baudRate)
	return NewLink(port), nil
}

// Send writes one wrist command. Sequence numbers start at 1.
func (l *Link) Send(d control.Deltas) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	if _, err := io.WriteString(l.rw, EncodeWristCommand(l.seq, d.PitchRad, d.RollRad)); err != nil {
		return fmt.Errorf("actuator: write wrist command: %w", err)
	}
	return nil
}

// ReadArm reads sentences until the stream ends, calling fn with every
// forearm orientation. Malformed lines are logged and skipped. io.EOF is
// returned as nil.
func (l *Link) ReadArm(fn func(quat.Number)) error {
	reader := bufio.NewReader(l.rw)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "$") {
			l.handleLine(line, fn)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("actuator: read: %w", err)
		}
	}
}

func (l *Link) handleLine(line string, fn func(quat.Number)) {
	s, err := Parse(line)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	arm, ok := s.(ArmOrientation)
	if !ok {
		return
	}
	if quat.Abs(arm.Quat) == 0 {
		log.Printf("actuator: ignoring zero arm quaternion")
		return
	}
	fn(arm.Quat)
}

// Close closes the underlying stream.
func (l *Link) Close() error {
	return l.rw.Close()
}
