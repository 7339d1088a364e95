// Package rho finds discrete logarithms with Pollard's rho method: a walk is
// iterated with Floyd's cycle detection until two states collide, and the
// collision is turned into a logarithm by solving a linear congruence mod N.
package rho

import (
	"context"
	"errors"
	"fmt"

	"github.com/takakv/pollard-rho/group"
	"github.com/takakv/pollard-rho/walk"
)

// ErrNoCollision is returned when the step bound is hit before a collision.
var ErrNoCollision = errors.New("no collision within step bound")

// Context cancellation is checked every pollInterval iterations.
const pollInterval = 1 << 12

// Collision holds the tortoise and hare states at the moment their elements
// matched. Steps counts walk applications, three per iteration.
type Collision struct {
	Tortoise *walk.State
	Hare     *walk.State
	Steps    uint64
}

// Detector runs Floyd's tortoise-and-hare cycle detection over a walk.
type Detector struct {
	Group group.Group
	Walk  walk.Walk
	// MaxSteps bounds the number of walk applications; 0 means unbounded.
	MaxSteps uint64
}

// Run starts both the tortoise and the hare at start and advances them at
// speeds one and two until they land on the same element. start is not
// modified. When the bound is exceeded the returned collision carries only
// the step count.
func (d *Detector) Run(ctx context.Context, start *walk.State) (*Collision, error) {
	tortoise := start.Clone(d.Group)
	hare := start.Clone(d.Group)

	var steps uint64
	for iter := uint64(0); ; iter++ {
		if iter%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return &Collision{Steps: steps}, err
			}
		}
		if d.MaxSteps > 0 && steps+3 > d.MaxSteps {
			return &Collision{Steps: steps}, fmt.Errorf("%w: gave up after %d steps", ErrNoCollision, steps)
		}

		d.Walk.Step(tortoise)
		d.Walk.Step(hare)
		d.Walk.Step(hare)
		steps += 3

		if tortoise.X.IsEqual(hare.X) {
			return &Collision{Tortoise: tortoise, Hare: hare, Steps: steps}, nil
		}
	}
}
