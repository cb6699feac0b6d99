//go:build js && wasm

package jsbridge

import (
	"syscall/js"

	"github.com/mapmarks/overlay/internal/acquire"
	"github.com/mapmarks/overlay/internal/mapview"
)

// leafletBackRef is where the map instance is found on its container element.
const leafletBackRef = "_leaflet_map"

// Environment probes the live page for the acquisition engine.
type Environment struct{}

var _ acquire.Environment = Environment{}

func (Environment) ElementByID(id string) acquire.Node {
	if id == "" {
		return nil
	}
	e := jsDocument.Call("getElementById", id)
	if !defined(e) {
		return nil
	}
	return node{e}
}

func (Environment) ElementsByClass(class string) []acquire.Node {
	list := jsDocument.Call("getElementsByClassName", class)
	n := list.Length()
	nodes := make([]acquire.Node, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, node{list.Index(i)})
	}
	return nodes
}

func (Environment) Global(name string) acquire.Object {
	v := jsGlobal.Get(name)
	if !defined(v) || v.Type() != js.TypeObject {
		return nil
	}
	return object{v}
}

func (Environment) GlobalNames() []string {
	keys := jsGlobal.Get("Object").Call("keys", jsGlobal)
	names := make([]string, keys.Length())
	for i := range names {
		names[i] = keys.Index(i).String()
	}
	return names
}

type node struct{ v js.Value }

func (n node) MapInstance() acquire.Object {
	m := n.v.Get(leafletBackRef)
	if !defined(m) {
		return nil
	}
	return object{m}
}

type object struct{ v js.Value }

func (o object) Callable(name string) bool {
	return o.v.Get(name).Type() == js.TypeFunction
}

func (o object) HasOwn(name string) bool {
	return jsGlobal.Get("Object").Get("prototype").Get("hasOwnProperty").Call("call", o.v, name).Bool()
}

func (o object) Map() mapview.Map { return NewMap(o.v) }
