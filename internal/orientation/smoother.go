// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// Smoother blends each new sample into the previous output:
// out = Interpolate(prev, next, alpha). alpha = 1 passes samples through.
type Smoother struct {
	alpha float64

	mu   sync.Mutex
	last *Sample
}

// NewSmoother returns a smoother with blend factor alpha in (0, 1].
func NewSmoother(alpha float64) (*Smoother, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("smoothing alpha must be in (0, 1], got %v", alpha)
	}
	return &Smoother{alpha: alpha}, nil
}

// Add blends s into the running pose and returns the smoothed sample.
func (sm *Smoother) Add(s Sample) Sample {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.last == nil || sm.alpha == 1 {
		sm.last = &s
		return s
	}

	out := Sample{
		Pose: posemath.Interpolate(sm.last.Pose, s.Pose, sm.alpha),
		At:   s.At,
		FPS:  s.FPS,
	}
	sm.last = &out
	return out
}

// Reset forgets the running pose.
func (sm *Smoother) Reset() {
	sm.mu.Lock()
	sm.last = nil
	sm.mu.Unlock()
}
