// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control owns the wrist calibration state of a teleop session and
// turns phone/forearm orientations into wrist joint deltas.
package control

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

var (
	// ErrNotCalibrated is returned by Deltas before the first Calibrate.
	ErrNotCalibrated = errors.New("wrist session not calibrated")
	// ErrNoOrientation is returned by Calibrate until both the phone and the
	// forearm orientation have been received.
	ErrNoOrientation = errors.New("phone or arm orientation not yet received")
)

// Snapshot is the zero reference for wrist deltas. It is never modified after
// creation; a new calibration replaces it.
type Snapshot struct {
	ID    uuid.UUID
	Phone *mat.Dense
	Arm   *mat.Dense
	At    time.Time
}

// Deltas are the wrist joint commands in radians.
type Deltas struct {
	CalibrationID uuid.UUID `json:"calibration_id"`
	PitchRad      float64   `json:"pitch_rad"`
	RollRad       float64   `json:"roll_rad"`
	At            time.Time `json:"at"`
}

// Limits clamps the delta magnitudes. Zero means unlimited.
type Limits struct {
	MaxPitchRad float64
	MaxRollRad  float64
}

// Session tracks the latest phone and forearm orientations and the current
// calibration. All methods are safe for concurrent use.
type Session struct {
	limits Limits
	now    func() time.Time

	mu       sync.RWMutex
	phone    *mat.Dense
	phoneAt  time.Time
	arm      *mat.Dense
	snapshot *Snapshot
}

// NewSession returns an uncalibrated session.
func NewSession(limits Limits) *Session {
	return &Session{limits: limits, now: time.Now}
}

// UpdatePhone records the current world-frame phone orientation (3x3).
func (s *Session) UpdatePhone(r mat.Matrix, at time.Time) {
	c := mat.DenseCopyOf(r)
	s.mu.Lock()
	s.phone = c
	s.phoneAt = at
	s.mu.Unlock()
}

// UpdateArm records the current world-frame forearm orientation (3x3).
func (s *Session) UpdateArm(r mat.Matrix) {
	c := mat.DenseCopyOf(r)
	s.mu.Lock()
	s.arm = c
	s.mu.Unlock()
}

// Calibrate captures the current orientations as the new zero reference.
func (s *Session) Calibrate() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phone == nil || s.arm == nil {
		return Snapshot{}, ErrNoOrientation
	}
	snap := Snapshot{
		ID:    uuid.New(),
		Phone: mat.DenseCopyOf(s.phone),
		Arm:   mat.DenseCopyOf(s.arm),
		At:    s.now(),
	}
	s.snapshot = &snap
	return snap, nil
}

// Reset drops the calibration. Orientations are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Calibration returns the current snapshot, if any.
func (s *Session) Calibration() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Deltas computes the wrist deltas for the latest orientations.
func (s *Session) Deltas() (Deltas, error) {
	s.mu.RLock()
	snap, phone, arm, at := s.snapshot, s.phone, s.arm, s.phoneAt
	s.mu.RUnlock()

	if snap == nil {
		return Deltas{}, ErrNotCalibrated
	}

	// phone and arm are replaced, never mutated, so reading them unlocked is safe
	pitch, roll := posemath.WristDeltas(phone, arm, snap.Phone, snap.Arm)
	return Deltas{
		CalibrationID: snap.ID,
		PitchRad:      limit(pitch, s.limits.MaxPitchRad),
		RollRad:       limit(roll, s.limits.MaxRollRad),
		At:            at,
	}, nil
}

func limit(v, max float64) float64 {
	if max <= 0 {
		return v
	}
	return math.Max(-max, math.Min(max, v))
}
