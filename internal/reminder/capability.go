package reminder

import "sync/atomic"

// Capability records whether the platform can deliver notifications. It
// starts supported and, once marked unsupported, stays that way for the
// life of the process.
type Capability struct {
	unsupported atomic.Bool
}

// Supported reports whether scheduling should be attempted.
func (c *Capability) Supported() bool {
	return !c.unsupported.Load()
}

// MarkUnsupported flips the capability off. It reports whether this call
// made the transition.
func (c *Capability) MarkUnsupported() bool {
	return c.unsupported.CompareAndSwap(false, true)
}
