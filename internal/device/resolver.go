package device

import "sync"

// Resolver decides which device new tensors and models are placed on. Node
// handlers query it through Resolve instead of hard-coding a device.
type Resolver interface {
	Resolve() Device
}

// Fixed is a Resolver that always yields one device. It is what package pin
// installs for the duration of a pinned execution.
type Fixed Device

// Resolve implements Resolver.
func (f Fixed) Resolve() Device { return Device(f) }

// defaultResolver re-elects the default target on every query, so a device
// appearing or disappearing between queries is observed.
type defaultResolver struct{}

func (defaultResolver) Resolve() Device { return DefaultTarget() }

var (
	cellMu sync.Mutex
	active Resolver = defaultResolver{}
)

// ActiveResolver returns the resolver currently installed in the
// process-wide cell.
func ActiveResolver() Resolver {
	cellMu.Lock()
	defer cellMu.Unlock()
	return active
}

// Resolve queries the installed resolver.
func Resolve() Device {
	return ActiveResolver().Resolve()
}

// Override installs r in the process-wide cell and returns a function that
// puts back the exact resolver value that was installed before — the saved
// value itself, not a recomputed equivalent, since callers may rely on the
// identity of the original.
//
// The cell is global. If a second Override lands before the first restore
// runs, the windows interleave: the second override wins until either
// restore executes, and each restore reinstates what it saw at its own
// Override call. Callers own the single-writer discipline.
func Override(r Resolver) (restore func()) {
	cellMu.Lock()
	saved := active
	active = r
	cellMu.Unlock()

	return func() {
		cellMu.Lock()
		active = saved
		cellMu.Unlock()
	}
}
