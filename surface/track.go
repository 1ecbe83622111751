package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ABI-Software/scaffoldmaker-sub005/curve"
)

// TrackStatus reports how a Track call ended.
type TrackStatus uint8

const (
	// StatusCompleted: the full distance was tracked.
	StatusCompleted TrackStatus = iota
	// StatusBoundary: the track reached the surface boundary before
	// covering the distance; the returned position is on the boundary.
	StatusBoundary
	// StatusDegenerate: the direction had no in-plane component or a step
	// made no progress; the returned position is the best reached.
	StatusDegenerate
)

func (ts TrackStatus) String() string {
	switch ts {
	case StatusCompleted:
		return "completed"
	case StatusBoundary:
		return "boundary"
	case StatusDegenerate:
		return "degenerate"
	}
	return fmt.Sprintf("TrackStatus(%d)", uint8(ts))
}

const (
	// target/maximum magnitude of xi increment per step
	maxMagDxi = 0.02
	// step budget: generous for any in-range track at maxMagDxi steps
	maxTrackSteps = 1000000
)

// Track follows the surface from start in the given 3-D direction, projected
// onto the surface, until the track distance is covered. Approximate, using
// the improved Euler method (mean of start and end gradients per step). A
// negative distance negates both. Returns the final position with the
// status; ErrTrackingFailed if the step budget is exhausted.
func (s *Surface) Track(start Position, direction r3.Vec, distance float64) (Position, TrackStatus, error) {
	if _, err := s.nodeIndices(start); err != nil {
		return start, StatusDegenerate, err
	}
	if distance < 0.0 {
		direction = r3.Scale(-1.0, direction)
		distance = -distance
	}
	position := start
	travelled := 0.0
	distanceLimit := 0.9999 * distance
	for step := 0; step < maxTrackSteps; step++ {
		if travelled >= distance {
			return position, StatusCompleted, nil
		}
		xi1, xi2 := position.Xi1, position.Xi2
		ax, ad1, ad2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return position, StatusDegenerate, err
		}
		adeltaXi1, adeltaXi2 := DeltaXi(ad1, ad2, direction)
		mag := math.Hypot(adeltaXi1, adeltaXi2)
		if mag == 0.0 {
			return position, StatusDegenerate, nil
		}
		scale := maxMagDxi / mag
		adxi1, adxi2 := scale*adeltaXi1, scale*adeltaXi2
		// predictor: evaluate at the trial increment, possibly slightly
		// outside the element, and average gradients
		trial := position.offsetXi(adxi1, adxi2)
		_, td1, td2, err := s.EvaluateDerivatives(trial)
		if err != nil {
			return position, StatusDegenerate, err
		}
		tdeltaXi1, tdeltaXi2 := DeltaXi(td1, td2, direction)
		deltaXi1 := 0.5 * (adeltaXi1 + tdeltaXi1)
		deltaXi2 := 0.5 * (adeltaXi2 + tdeltaXi2)
		mag = math.Hypot(deltaXi1, deltaXi2)
		if mag == 0.0 {
			return position, StatusDegenerate, nil
		}
		scale = maxMagDxi / mag
		dxi1, dxi2 := scale*deltaXi1, scale*deltaXi2

		nxi1, nxi2, proportion, faceNumber := incrementXiOnSquare(xi1, xi2, dxi1, dxi2)
		position.Xi1, position.Xi2 = nxi1, nxi2
		bx, bd1, bd2, err := s.EvaluateDerivatives(position)
		if err != nil {
			return position, StatusDegenerate, err
		}
		bdeltaXi1, bdeltaXi2 := DeltaXi(bd1, bd2, direction)
		mag = math.Hypot(bdeltaXi1, bdeltaXi2)
		var bdxi1, bdxi2 float64
		if mag > 0.0 {
			scale = maxMagDxi / mag
			bdxi1, bdxi2 = scale*bdeltaXi1, scale*bdeltaXi2
		}
		ad := r3.Scale(proportion, r3.Add(r3.Scale(adxi1, ad1), r3.Scale(adxi2, ad2)))
		bd := r3.Scale(proportion, r3.Add(r3.Scale(bdxi1, bd1), r3.Scale(bdxi2, bd2)))
		arcLength := curve.ArcLength(ax, ad, bx, bd)
		if arcLength > 0.0 && travelled+arcLength >= distanceLimit {
			// fractional final step to the requested distance
			r := proportion * (distance - travelled) / arcLength
			position.Xi1 = xi1 + r*dxi1
			position.Xi2 = xi2 + r*dxi2
			return position, StatusCompleted, nil
		}
		if arcLength == 0.0 && faceNumber == 0 {
			return position, StatusDegenerate, nil
		}
		travelled += arcLength
		if faceNumber != 0 {
			var onBoundary bool
			position, onBoundary = s.crossFace(position, faceNumber)
			if onBoundary {
				return position, StatusBoundary, nil
			}
		}
	}
	return position, StatusDegenerate, fmt.Errorf(
		"surface: Track: %w: exceeded %d steps at %g of %g", ErrTrackingFailed, maxTrackSteps, travelled, distance)
}

// incrementXiOnSquare increments xi1, xi2 by dxi1, dxi2 limited to the unit
// square element bounds. It works out the face crossed first and limits that
// xi to 0 or 1 with the other xi moved in proportion. Returns the new xi
// coordinates, the proportion of the increment applied (1 if within the
// element) and the face number: 0 none, 1 xi1==0, 2 xi1==1, 3 xi2==0,
// 4 xi2==1.
func incrementXiOnSquare(xi1, xi2, dxi1, dxi2 float64) (nxi1, nxi2, proportion float64, faceNumber int) {
	onxi1 := xi1 + dxi1
	onxi2 := xi2 + dxi2
	nxi1, nxi2 = onxi1, onxi2
	proportion = 1.0
	if onxi1 >= 0.0 && onxi1 <= 1.0 && onxi2 >= 0.0 && onxi2 <= 1.0 {
		return nxi1, nxi2, proportion, 0
	}
	// come back in the direction of dxi1, dxi2 to the first boundary,
	// moving both xi coordinates together
	if onxi1 < 0.0 && dxi1 < 0.0 {
		if p := -xi1 / dxi1; p < proportion {
			proportion = p
			faceNumber = 1
			nxi1 = 0.0
			nxi2 = xi2 + p*dxi2
		}
	} else if onxi1 > 1.0 && dxi1 > 0.0 {
		if p := (1.0 - xi1) / dxi1; p < proportion {
			proportion = p
			faceNumber = 2
			nxi1 = 1.0
			nxi2 = xi2 + p*dxi2
		}
	}
	if onxi2 < 0.0 && dxi2 < 0.0 {
		if p := -xi2 / dxi2; p < proportion {
			proportion = p
			faceNumber = 3
			nxi1 = xi1 + p*dxi1
			nxi2 = 0.0
		}
	} else if onxi2 > 1.0 && dxi2 > 0.0 {
		if p := (1.0 - xi2) / dxi2; p < proportion {
			proportion = p
			faceNumber = 4
			nxi1 = xi1 + p*dxi1
			nxi2 = 1.0
		}
	}
	return nxi1, nxi2, proportion, faceNumber
}

// crossFace moves a position on the given face into the adjacent element,
// or clamps to the lattice boundary. Reports whether the boundary was
// reached.
func (s *Surface) crossFace(p Position, faceNumber int) (Position, bool) {
	switch faceNumber {
	case 1: // xi1 == 0.0
		if p.E1 > 0 {
			p.E1--
			p.Xi1 = 1.0
			return p, false
		}
		p.Xi1 = 0.0
		return p, true
	case 2: // xi1 == 1.0
		if p.E1 < s.elementsCount1-1 {
			p.E1++
			p.Xi1 = 0.0
			return p, false
		}
		p.Xi1 = 1.0
		return p, true
	case 3: // xi2 == 0.0
		if p.E2 > 0 {
			p.E2--
			p.Xi2 = 1.0
			return p, false
		}
		p.Xi2 = 0.0
		return p, true
	case 4: // xi2 == 1.0
		if p.E2 < s.elementsCount2-1 {
			p.E2++
			p.Xi2 = 0.0
			return p, false
		}
		p.Xi2 = 1.0
		return p, true
	}
	return p, false
}

// positionOnBoundary reports whether p is within tolerance of a lattice
// boundary, snapping the xi coordinate when so: 1 for a xi1 boundary, 2 for
// a xi2 boundary, 0 otherwise.
func (s *Surface) positionOnBoundary(p Position) (Position, int) {
	const lowerLimit = 1.0e-8
	const upperLimit = 1.0 - lowerLimit
	proportion1 := (float64(p.E1) + p.Xi1) / float64(s.elementsCount1)
	if proportion1 < lowerLimit {
		p.Xi1 = 0.0
		return p, 1
	}
	if proportion1 > upperLimit {
		p.Xi1 = 1.0
		return p, 1
	}
	proportion2 := (float64(p.E2) + p.Xi2) / float64(s.elementsCount2)
	if proportion2 < lowerLimit {
		p.Xi2 = 0.0
		return p, 2
	}
	if proportion2 > upperLimit {
		p.Xi2 = 1.0
		return p, 2
	}
	return p, 0
}

// boundaryDirection returns the outward xi-space direction if p is near a
// boundary, e.g. (-1, 0) on the xi1 == 0 boundary, else ok false.
func (s *Surface) boundaryDirection(p Position) (dxi1, dxi2 float64, ok bool) {
	const lowerLimit = 1.0e-5
	const upperLimit = 1.0 - lowerLimit
	proportion1 := (float64(p.E1) + p.Xi1) / float64(s.elementsCount1)
	if proportion1 < lowerLimit {
		return -1.0, 0.0, true
	}
	if proportion1 > upperLimit {
		return 1.0, 0.0, true
	}
	proportion2 := (float64(p.E2) + p.Xi2) / float64(s.elementsCount2)
	if proportion2 < lowerLimit {
		return 0.0, -1.0, true
	}
	if proportion2 > upperLimit {
		return 0.0, 1.0, true
	}
	return 0.0, 0.0, false
}
