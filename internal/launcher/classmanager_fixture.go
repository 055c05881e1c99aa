package launcher

import (
	"sync"

	"dexsimplify/internal/dex"
)

// writerFunc adapts a plain function to dex.Builder, letting fixture tests
// observe what path a run asked to be written without a real archive
// writer.
type writerFunc func(outPath string) error

func (f writerFunc) Write(outPath string) error { return f(outPath) }

// FixtureClassManager is an in-memory dex.ClassManager for tests, using
// the same cache/mutex shape as the real class manager — repurposed here
// from file-module caching to tracking which methods a run has rewritten
// (MarkMutated), which a fixture test can assert on directly instead of
// re-parsing emitted bytes.
type FixtureClassManager struct {
	mu       sync.Mutex
	classes  map[string]*dex.Class
	order    []string
	mutated  map[*dex.Method]bool
	writes   []string
	writeErr error
}

var _ dex.ClassManager = (*FixtureClassManager)(nil)

func NewFixtureClassManager(classes ...*dex.Class) *FixtureClassManager {
	m := &FixtureClassManager{
		classes: make(map[string]*dex.Class, len(classes)),
		mutated: make(map[*dex.Method]bool),
	}
	for _, c := range classes {
		m.classes[c.Name] = c
		m.order = append(m.order, c.Name)
	}
	return m
}

func (m *FixtureClassManager) ClassNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *FixtureClassManager) Class(name string) (*dex.Class, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[name]
	return c, ok
}

func (m *FixtureClassManager) Methods(className string) []*dex.Method {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[className]
	if !ok {
		return nil
	}
	return c.Methods
}

// MarkMutated records that method's instructions were rewritten, per
// dex.ClassManager's contract that a fresh view is returned thereafter —
// the fixture's Methods already returns live *dex.Method pointers, so
// this just bookkeeps the fact for test assertions.
func (m *FixtureClassManager) MarkMutated(method *dex.Method) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutated[method] = true
}

func (m *FixtureClassManager) WasMutated(method *dex.Method) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutated[method]
}

func (m *FixtureClassManager) Builder() dex.Builder {
	return writerFunc(func(outPath string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.writes = append(m.writes, outPath)
		return m.writeErr
	})
}

func (m *FixtureClassManager) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *FixtureClassManager) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
