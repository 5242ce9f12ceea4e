package model

// DefaultStackID identifies the primary stack of a conversation when
// no explicit stack id is supplied.
const DefaultStackID = ""

// Stack is the ordered history of intents for one conversation, plus
// bookkeeping about the last rendered message. A stack with no intents
// and no last message id is logically absent and is persisted as a
// tombstone.
type Stack struct {
	ID                string
	Intents           []string
	LastMessageID     *int64
	LastMediaID       *string
	LastMediaUniqueID *string
	LastReplyKeyboard bool
	AccessSettings    *AccessSettings
}

func NewStack(id string) *Stack {
	return &Stack{ID: id}
}

func (s *Stack) Empty() bool {
	return len(s.Intents) == 0
}

// Push appends an intent id to the history.
func (s *Stack) Push(intentID string) {
	s.Intents = append(s.Intents, intentID)
}

// Pop removes and returns the most recent intent id, or "" when the
// stack is empty.
func (s *Stack) Pop() string {
	if len(s.Intents) == 0 {
		return ""
	}
	last := s.Intents[len(s.Intents)-1]
	s.Intents = s.Intents[:len(s.Intents)-1]
	return last
}

// LastIntentID returns the most recent intent id without removing it,
// or "" when the stack is empty.
func (s *Stack) LastIntentID() string {
	if len(s.Intents) == 0 {
		return ""
	}
	return s.Intents[len(s.Intents)-1]
}
