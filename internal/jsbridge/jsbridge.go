//go:build js && wasm

// Package jsbridge binds the overlay to the browser: the Leaflet map, the DOM
// dialogs, sessionStorage and the global functions called from marker popups.
package jsbridge

import (
	"fmt"
	"syscall/js"
)

var (
	jsGlobal   js.Value
	jsDocument js.Value
)

func init() {
	jsGlobal = js.Global()
	jsDocument = jsGlobal.Get("document")
}

// defined reports whether v holds a usable value.
func defined(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

// listener owns a set of registered callbacks so they can be released together.
type listener struct {
	funcs []js.Func
}

// on registers fn for event on target. fn runs on its own goroutine because
// callbacks may block on network requests, which would deadlock the event loop.
func (l *listener) on(target js.Value, event string, fn func(ev js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
		}
		go fn(ev)
		return nil
	})
	l.funcs = append(l.funcs, f)
	target.Call("addEventListener", event, f)
}

// sync registers fn to run inside the browser callback. Use it when the
// handler must call preventDefault before returning.
func (l *listener) sync(target js.Value, event string, fn func(ev js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	})
	l.funcs = append(l.funcs, f)
	target.Call("addEventListener", event, f)
}

func (l *listener) release() {
	for _, f := range l.funcs {
		f.Release()
	}
	l.funcs = nil
}

// element creates a tag with an inline style.
func element(tag, style string) js.Value {
	e := jsDocument.Call("createElement", tag)
	if style != "" {
		e.Get("style").Set("cssText", style)
	}
	return e
}

// textElement creates a tag whose content is set as text, never markup.
func textElement(tag, style, text string) js.Value {
	e := element(tag, style)
	e.Set("textContent", text)
	return e
}

func remove(e js.Value) {
	if defined(e) && defined(e.Get("parentNode")) {
		e.Get("parentNode").Call("removeChild", e)
	}
}

// Defer runs fn after the current event turn.
func Defer(fn func()) {
	var f js.Func
	f = js.FuncOf(func(this js.Value, args []js.Value) any {
		f.Release()
		go fn()
		return nil
	})
	jsGlobal.Call("setTimeout", f, 0)
}

// SessionStorage adapts window.sessionStorage. Access can throw when storage
// is disabled, so every call recovers into an error.
type SessionStorage struct{}

func (SessionStorage) Get(key string) (value string, ok bool, err error) {
	defer recoverInto(&err)
	v := jsGlobal.Get("sessionStorage").Call("getItem", key)
	if v.IsNull() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (SessionStorage) Set(key, value string) (err error) {
	defer recoverInto(&err)
	jsGlobal.Get("sessionStorage").Call("setItem", key, value)
	return nil
}

func (SessionStorage) Remove(key string) (err error) {
	defer recoverInto(&err)
	jsGlobal.Get("sessionStorage").Call("removeItem", key)
	return nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("sessionStorage: %v", r)
	}
}

// Origin returns window.location.origin.
func Origin() string {
	return jsGlobal.Get("location").Get("origin").String()
}

// Config reads window.overlayConfig as JSON.
func Config() (string, bool) {
	cfg := jsGlobal.Get("overlayConfig")
	if !defined(cfg) {
		return "", false
	}
	return jsGlobal.Get("JSON").Call("stringify", cfg).String(), true
}
