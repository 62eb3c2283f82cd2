// Package runner provides the substrate the rest of the tool drives tests
// through: a registry of test classes, ordered requests over them, and a
// serial runner that fires lifecycle events at attached listeners.
//
// Since there is no runtime reflection over compiled test code, discovery is
// fed by this registry; a build step (or the test classes themselves, in an
// init function) enumerates the available classes into it.
package runner

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/thought-machine/testpackage/src/core"
)

// A TestFunc is the body of a single test method.
type TestFunc func(t *T)

// A Method is one test method on a class.
type Method struct {
	Name    string
	Run     TestFunc
	Ignored bool // registered but never executed
}

// A Class is a named collection of test methods.
type Class struct {
	Name     string // fully qualified, e.g. org.example.SimpleTest
	Methods  []Method
	Abstract bool // cannot be instantiated; never runnable
}

// Runnable returns true if this class can actually contribute tests to a run.
func (c *Class) Runnable() bool {
	return !c.Abstract && len(c.Methods) > 0
}

// Method returns the method with the given name, or nil.
func (c *Class) Method(name string) *Method {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// A Registry holds the set of known test classes.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: map[string]*Class{}}
}

// Register adds a class to the registry. Re-registering a name replaces the
// previous entry.
func (r *Registry) Register(class *Class) {
	sort.Slice(class.Methods, func(i, j int) bool { return class.Methods[i].Name < class.Methods[j].Name })
	r.classes[class.Name] = class
}

// Class returns the class with the given name, or nil.
func (r *Registry) Class(name string) *Class {
	return r.classes[name]
}

// ClassNames returns the names of all registered classes in lexicographic order.
func (r *Registry) ClassNames() []string {
	names := maps.Keys(r.classes)
	sort.Strings(names)
	return names
}

// Descriptions returns descriptions for every method of the given class in
// lexicographic order.
func (r *Registry) Descriptions(className string) []core.Description {
	class := r.classes[className]
	if class == nil {
		return nil
	}
	descs := make([]core.Description, len(class.Methods))
	for i, m := range class.Methods {
		descs[i] = core.Description{Class: class.Name, Method: m.Name}
	}
	return descs
}

// Default is the registry that generated test indexes register into.
var Default = NewRegistry()

// Register adds a class to the default registry.
func Register(class *Class) {
	Default.Register(class)
}
