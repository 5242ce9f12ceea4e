package model

// Context is one active dialog instance, identified by its intent id.
// State always points at a canonical registered State; the payload
// maps belong to the dialog engine and pass through storage unchanged.
type Context struct {
	ID         string
	StackID    string
	State      *State
	StartData  map[string]any
	DialogData map[string]any
	WidgetData map[string]any
}

func NewContext(id, stackID string, state *State) *Context {
	return &Context{
		ID:         id,
		StackID:    stackID,
		State:      state,
		StartData:  map[string]any{},
		DialogData: map[string]any{},
		WidgetData: map[string]any{},
	}
}
