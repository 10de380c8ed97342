// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// RunMockConsole runs the mock phone through the conversion and wrist
// pipeline without a broker, with the forearm held level. The first sample
// is used as the calibration.
func RunMockConsole() error {
	src := orientation.NewMockSource(10)
	conv := orientation.NewConverter(0, orientation.DefaultInitialPitchDeg, 0)
	session := control.NewSession(control.Limits{})
	session.UpdateArm(posemath.RotationOf(posemath.Identity()))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		m, err := src.Next()
		if err != nil {
			return err
		}
		s, err := conv.Convert(m, t)
		if err != nil {
			return err
		}
		fmt.Println(formatPose(orientation.ToDisplay(s)))

		session.UpdatePhone(s.Rotation(), s.At)
		if _, ok := session.Calibration(); !ok {
			if _, err := session.Calibrate(); err != nil {
				return err
			}
		}

		d, err := session.Deltas()
		if errors.Is(err, control.ErrNotCalibrated) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Println(formatWrist(d))
	}
	return nil
}
