// Package liveness decides, per motion sub-domain, whether the external
// simulator is still driving the rig. Each live update re-arms a short expiry
// deadline; the deadlines are plain local state polled once per scheduler
// tick, not OS timers, so firing resolution is frame-cadence by design.
package liveness

import "time"

// Domain is one independently tracked motion sub-domain.
type Domain string

const (
	DomainFrame     Domain = "frame"
	DomainLevers    Domain = "levers"
	DomainPistons   Domain = "pistons"
	DomainPressures Domain = "pressures"
)

// Domains lists every tracked sub-domain.
var Domains = []Domain{DomainFrame, DomainLevers, DomainPistons, DomainPressures}

// DefaultExpiry is the window after which a silent sub-domain is no longer
// considered externally driven.
const DefaultExpiry = 800 * time.Millisecond

type entry struct {
	driven   bool
	deadline time.Time
	lastSeen time.Time
}

// Controller holds the fixed sub-domain table.
type Controller struct {
	expiry  time.Duration
	entries map[Domain]*entry
}

// NewController creates a controller with all sub-domains not driven.
func NewController(expiry time.Duration) *Controller {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	c := &Controller{
		expiry:  expiry,
		entries: make(map[Domain]*entry, len(Domains)),
	}
	for _, d := range Domains {
		c.entries[d] = &entry{}
	}
	return c
}

// Touch marks a sub-domain externally driven and re-arms its expiry deadline.
// Unknown domains are created on first touch, which lets callers track finer
// slices (per lever corner) alongside the canonical table.
func (c *Controller) Touch(domain Domain, now time.Time) {
	e, ok := c.entries[domain]
	if !ok {
		e = &entry{}
		c.entries[domain] = e
	}
	e.driven = true
	e.deadline = now.Add(c.expiry)
	e.lastSeen = now
}

// Expire clears the driven flag on every sub-domain whose deadline has
// passed. Called once per scheduler tick.
func (c *Controller) Expire(now time.Time) {
	for _, e := range c.entries {
		if e.driven && now.After(e.deadline) {
			e.driven = false
		}
	}
}

// Driven reports whether a sub-domain is currently externally driven.
func (c *Controller) Driven(domain Domain) bool {
	if e, ok := c.entries[domain]; ok {
		return e.driven
	}
	return false
}

// LastSeen returns the time of the last live update for a sub-domain.
// Zero if it has never been touched.
func (c *Controller) LastSeen(domain Domain) time.Time {
	if e, ok := c.entries[domain]; ok {
		return e.lastSeen
	}
	return time.Time{}
}
