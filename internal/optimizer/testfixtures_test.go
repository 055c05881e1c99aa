package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
	"dexsimplify/internal/engine/state"
)

type fakeClassManager struct {
	classes map[string]*dex.Class
}

func newFakeClassManager(classes ...*dex.Class) *fakeClassManager {
	m := &fakeClassManager{classes: make(map[string]*dex.Class)}
	for _, c := range classes {
		m.classes[c.Name] = c
	}
	return m
}

func (m *fakeClassManager) ClassNames() []string {
	var out []string
	for name := range m.classes {
		out = append(out, name)
	}
	return out
}

func (m *fakeClassManager) Class(name string) (*dex.Class, bool) {
	c, ok := m.classes[name]
	return c, ok
}

func (m *fakeClassManager) Methods(className string) []*dex.Method {
	c, ok := m.classes[className]
	if !ok {
		return nil
	}
	return c.Methods
}

func (m *fakeClassManager) MarkMutated(method *dex.Method) {}
func (m *fakeClassManager) Builder() dex.Builder           { return nil }

type permissivePolicy struct{}

func (permissivePolicy) IsSafeClass(string) bool      { return false }
func (permissivePolicy) IsSafeMethod(string) bool     { return false }
func (permissivePolicy) IsFrameworkClass(string) bool { return false }
func (permissivePolicy) IsLocalClass(string) bool     { return true }

// buildGraph drives method through a real engine.Driver, the only supported
// way to produce an *engine.ExecutionGraph from outside package engine
// (ExecutionGraph's node-building internals are unexported by design).
func buildGraph(method *dex.Method) (*engine.ExecutionGraph, error) {
	return buildGraphWithSiblings(method)
}

// buildGraphWithSiblings is buildGraph for the case where method invokes a
// sibling method in its own class (dex.Invoke's local-call resolution looks
// it up via dex.ClassManager.Methods, so the callee needs to share a class
// with the caller).
func buildGraphWithSiblings(method *dex.Method, siblings ...*dex.Method) (*engine.ExecutionGraph, error) {
	manager := newFakeClassManager(&dex.Class{Name: method.OwnerClass, Methods: append([]*dex.Method{method}, siblings...)})
	session := engine.NewSession(state.DefaultBounds())
	driver := engine.NewDriver(manager, permissivePolicy{}, session)
	var cache *state.ClassCache
	cache = state.NewClassCache(driver.ClinitRunner(&cache))
	return driver.BuildMethod(method, cache)
}
