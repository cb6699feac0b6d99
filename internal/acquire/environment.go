package acquire

import "github.com/mapmarks/overlay/internal/mapview"

// Object is a script value reachable from the page.
type Object interface {
	// Callable reports whether the named member is a function.
	Callable(name string) bool
	// HasOwn reports whether the named field is an own property.
	HasOwn(name string) bool
	// Map wraps the value as a map handle.
	Map() mapview.Map
}

// Node is a page element.
type Node interface {
	// MapInstance returns the map back-reference stored on the element by
	// the widget, or nil.
	MapInstance() Object
}

// Environment is what the engine probes on every attempt. Implementations
// return nil for absent elements and undefined globals.
type Environment interface {
	ElementByID(id string) Node
	ElementsByClass(class string) []Node
	Global(name string) Object
	// GlobalNames lists global names in enumeration order.
	GlobalNames() []string
}
