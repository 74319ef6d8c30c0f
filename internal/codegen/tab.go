// Package codegen renders a sequenced mir.Program into each supported
// target's text form.
package codegen

import "strings"

// Tab is an immutable indent level; String returns that many tab
// characters.
type Tab struct {
	len int
}

// Add returns the next deeper indent level.
func (t Tab) Add() Tab {
	return Tab{len: t.len + 1}
}

func (t Tab) String() string {
	return strings.Repeat("\t", t.len)
}
