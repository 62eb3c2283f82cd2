package core

import (
	"fmt"
	"strings"
)

// A Description identifies a single test method on a test class.
type Description struct {
	Class  string // fully qualified class name, e.g. org.example.SimpleTest
	Method string // method name, e.g. testTrue1
}

// ID returns the canonical identifier of this test, of the form
// methodName(fully.qualified.ClassName). These are unique within a run.
func (d Description) ID() string {
	return d.Method + "(" + d.Class + ")"
}

// String implements the fmt.Stringer interface.
func (d Description) String() string {
	return d.ID()
}

// DisplayName returns the short human-readable form, e.g. SimpleTest.testTrue1.
func (d Description) DisplayName() string {
	return SimpleName(d.Class) + "." + d.Method
}

// Package returns the package portion of the class name, which may be empty
// for a class in the default package.
func (d Description) Package() string {
	if idx := strings.LastIndexByte(d.Class, '.'); idx != -1 {
		return d.Class[:idx]
	}
	return ""
}

// ParseID is the inverse of ID.
func ParseID(id string) (Description, error) {
	open := strings.IndexByte(id, '(')
	if open == -1 || !strings.HasSuffix(id, ")") {
		return Description{}, fmt.Errorf("Invalid test id %q, should be of the form method(org.example.Class)", id)
	}
	return Description{Class: id[open+1 : len(id)-1], Method: id[:open]}, nil
}

// SimpleName returns the class name without its package.
func SimpleName(class string) string {
	if idx := strings.LastIndexByte(class, '.'); idx != -1 {
		return class[idx+1:]
	}
	return class
}
