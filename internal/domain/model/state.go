package model

// State is one addressable step of a dialog flow. States are declared
// once at startup inside a state group and never constructed from
// persisted data: the storage layer resolves stored identifiers back
// to these canonical instances, so pointer comparison is meaningful.
type State struct {
	Group string
	Name  string
}

// ID returns the canonical textual identifier, "<group>:<name>", or
// just the group name for a state with no local name.
func (s *State) ID() string {
	if s.Name == "" {
		return s.Group
	}
	return s.Group + ":" + s.Name
}

// StateGroups maps a group name to its member states in declaration
// order. Built statically at startup and treated as read-only.
type StateGroups map[string][]*State

// NewStateGroup declares the states of one group, preserving order.
func NewStateGroup(group string, names ...string) []*State {
	states := make([]*State, 0, len(names))
	for _, name := range names {
		states = append(states, &State{Group: group, Name: name})
	}
	return states
}
