package engine

import "dexsimplify/internal/dex"

// fakeClassManager is a minimal dex.ClassManager for driver tests — package
// engine cannot import internal/launcher's FixtureClassManager without
// creating an import cycle (launcher depends on engine), so tests here get
// their own tiny stand-in.
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

func (m *fakeClassManager) Builder() dex.Builder { return nil }

// permissivePolicy treats nothing as safe or framework — tests that need
// specific predicate behavior build their own.
type permissivePolicy struct{}

func (permissivePolicy) IsSafeClass(string) bool      { return false }
func (permissivePolicy) IsSafeMethod(string) bool     { return false }
func (permissivePolicy) IsFrameworkClass(string) bool { return false }
func (permissivePolicy) IsLocalClass(string) bool     { return true }
