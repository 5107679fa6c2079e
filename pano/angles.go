// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import "math"

// CircleDistance returns the signed shortest rotation, in degrees, from p0
// to p1. Both angles are expected in [0, 360).
func CircleDistance(p0, p1 float64) float64 {
	d1 := p1 - p0
	var d2 float64
	if p1 > p0 {
		d2 = (p1 - 360) - p0
	} else {
		d2 = (360 - p0) + p1
	}
	if math.Abs(d1) < math.Abs(d2) {
		return d1
	}
	return d2
}

// Ease returns the step that moves current toward target at speed. Far
// away the step is the full speed, closer it shrinks proportionally, and
// within snapFrom it lands exactly on target. A snapFrom of 0 means speed/5.
func Ease(current, target, speed, snapFrom float64) float64 {
	easingFrom := speed * 40
	if snapFrom == 0 {
		snapFrom = speed / 5
	}
	ignoreFrom := speed / 1000

	d := current - target
	switch {
	case d > easingFrom:
		return -speed
	case d < -easingFrom:
		return speed
	case math.Abs(d) < snapFrom:
		return -d
	case math.Abs(d) < ignoreFrom:
		return 0
	default:
		return -(speed * d) / easingFrom
	}
}

// normDeg maps a to [0, 360).
func normDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// yawWindow returns the allowed yaw interval with hi >= lo, and false when
// it covers the whole circle. An interval with minYaw > maxYaw wraps
// through 0.
func yawWindow(minYaw, maxYaw float64) (lo, hi float64, limited bool) {
	lo, hi = minYaw, maxYaw
	if lo > hi {
		hi += 360
	}
	return lo, hi, hi-lo < 360
}

// SnapYaw normalizes y to [0, 360) and, if it falls outside the allowed
// interval, moves it to the nearer end of the interval. Within a limited
// interval with minYaw < maxYaw, the result is expressed in
// [minYaw, maxYaw].
func SnapYaw(y, minYaw, maxYaw float64) float64 {
	y = normDeg(y)
	lo, hi, limited := yawWindow(minYaw, maxYaw)
	if !limited {
		return y
	}
	s := lo + normDeg(y-lo)
	if s > hi {
		if s-hi < lo+360-s {
			s = hi
		} else {
			s = lo
		}
	}
	if minYaw > maxYaw {
		return normDeg(s)
	}
	return s
}

// yawAllowed reports whether y lies in the allowed interval.
func yawAllowed(y, minYaw, maxYaw float64) bool {
	lo, hi, limited := yawWindow(minYaw, maxYaw)
	return !limited || lo+normDeg(y-lo) <= hi
}
