package standalone

import (
	"log"

	emucore "github.com/user-none/nesplay/api"
)

// Backends is the ordered set of engine factories the host can switch
// between.
type Backends struct {
	factories []emucore.Factory
}

// availability is implemented by factories that may be missing what they
// need to build engines.
type availability interface {
	Available() bool
}

// NewBackends collects the given factories, skipping nil ones and those
// that report themselves unavailable.
func NewBackends(factories ...emucore.Factory) *Backends {
	b := &Backends{}
	for _, f := range factories {
		if f == nil {
			continue
		}
		if a, ok := f.(availability); ok && !a.Available() {
			log.Printf("backend %s unavailable, skipping", f.Name())
			continue
		}
		b.factories = append(b.factories, f)
	}
	return b
}

// Get returns the factory with the given name.
func (b *Backends) Get(name string) (emucore.Factory, bool) {
	for _, f := range b.factories {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Next returns the factory after current, wrapping around. It returns nil
// when there is nothing else to switch to.
func (b *Backends) Next(current string) emucore.Factory {
	if len(b.factories) < 2 {
		return nil
	}
	for i, f := range b.factories {
		if f.Name() == current {
			return b.factories[(i+1)%len(b.factories)]
		}
	}
	return b.factories[0]
}

// Names lists the registered backends in order.
func (b *Backends) Names() []string {
	names := make([]string, len(b.factories))
	for i, f := range b.factories {
		names[i] = f.Name()
	}
	return names
}
