package rig

// Manager owns the combination shape key targets of one host mesh.
type Manager struct {
	host Host

	targets     []*Target
	activeIndex int
}

// New builds an empty manager over the given host capabilities.
func New(host Host) *Manager {
	return &Manager{host: host}
}

// Host exposes the capabilities the manager synthesizes into.
func (m *Manager) Host() Host { return m.host }

func (m *Manager) Targets() []*Target { return m.targets }

// ActiveIndex is UI state: the target list-level operations act on.
func (m *Manager) ActiveIndex() int { return m.activeIndex }

func (m *Manager) SetActiveIndex(index int) {
	if index >= 0 {
		m.activeIndex = index
	}
}

// Active returns the target at the active index, or nil.
func (m *Manager) Active() *Target {
	if m.activeIndex < len(m.targets) {
		return m.targets[m.activeIndex]
	}
	return nil
}

// Find returns the index of the target driving the named shape key, or
// -1.
func (m *Manager) Find(name string) int {
	for i, t := range m.targets {
		if t.name == name {
			return i
		}
	}
	return -1
}

// AddTarget appends a target driving the named shape key, with a fresh
// identifier, an empty weight array, and the default linear falloff.
func (m *Manager) AddTarget(name string) *Target {
	t := newTarget(m, name)
	m.targets = append(m.targets, t)
	t.rewriteWeights()
	t.Update()
	return t
}

// RemoveTarget removes the target at index along with every host
// artifact it owns: driver channels, the shape key channel, and the
// weight array. On a bad index nothing changes.
func (m *Manager) RemoveTarget(index int) error {
	if index < 0 || index >= len(m.targets) {
		return ErrIndexOutOfRange
	}
	m.targets[index].removeHostState()
	m.targets = append(m.targets[:index], m.targets[index+1:]...)
	return nil
}

// MoveTarget reorders the target list. Purely presentational.
func (m *Manager) MoveTarget(from, to int) error {
	if from < 0 || from >= len(m.targets) || to < 0 || to >= len(m.targets) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	t := m.targets[from]
	m.targets = append(m.targets[:from], m.targets[from+1:]...)
	m.targets = append(m.targets[:to], append([]*Target{t}, m.targets[to:]...)...)
	return nil
}
