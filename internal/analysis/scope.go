package analysis

import (
	"errors"
)

// Variable is a declared or built-in variable.
type Variable struct {
	Name  string
	Type  string
	Level int
	Used  bool

	// Token is the declaring token; nil for built-in variables.
	Token *Token

	// Script is the number of the declaring script, 0 for built-ins.
	Script int
}

// MarkUsed records a read or write of the variable.
func (v *Variable) MarkUsed() {
	v.Used = true
}

// Frame is one level of the scope stack.
type Frame struct {
	Variables map[string]*Variable
	Functions []string

	order []string
}

func newFrame() *Frame {
	return &Frame{Variables: make(map[string]*Variable)}
}

// Ordered returns the frame's variables in declaration order.
func (f *Frame) Ordered() []*Variable {
	vars := make([]*Variable, 0, len(f.order))
	for _, name := range f.order {
		vars = append(vars, f.Variables[name])
	}

	return vars
}

// ErrGlobalScope is returned when popping the outermost frame.
var ErrGlobalScope = errors.New("already in the global scope")

// ScopeStack is the stack of lexical scopes of one analysis run. Included
// and hook scripts are analyzed on the same stack.
type ScopeStack struct {
	frames []*Frame
}

// NewScopeStack returns a stack holding only the global frame.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{frames: []*Frame{newFrame()}}
}

// Depth returns the index of the innermost frame; 0 is global scope.
func (s *ScopeStack) Depth() int {
	return len(s.frames) - 1
}

// Push opens a new innermost frame.
func (s *ScopeStack) Push() {
	s.frames = append(s.frames, newFrame())
}

// Pop closes the innermost frame.
func (s *ScopeStack) Pop() error {
	if len(s.frames) == 1 {
		return ErrGlobalScope
	}

	s.frames = s.frames[:len(s.frames)-1]

	return nil
}

// Frame returns frame i, or nil when it does not exist.
func (s *ScopeStack) Frame(i int) *Frame {
	if i < 0 || i >= len(s.frames) {
		return nil
	}

	return s.frames[i]
}

// Frames returns the frames from global to innermost.
func (s *ScopeStack) Frames() []*Frame {
	return s.frames
}

// Declare adds a variable to the innermost frame, replacing a variable of
// the same name in that frame.
func (s *ScopeStack) Declare(v *Variable) {
	f := s.frames[len(s.frames)-1]
	v.Level = len(s.frames) - 1

	if _, exists := f.Variables[v.Name]; !exists {
		f.order = append(f.order, v.Name)
	}
	f.Variables[v.Name] = v
}

// Lookup resolves name from the innermost frame outward, so an inner
// declaration hides an outer one of the same name.
func (s *ScopeStack) Lookup(name string) (*Variable, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].Variables[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// LookupOuter resolves name in the frames enclosing the innermost one.
func (s *ScopeStack) LookupOuter(name string) (*Variable, bool) {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if v, ok := s.frames[i].Variables[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// LookupCurrent resolves name in the innermost frame only.
func (s *ScopeStack) LookupCurrent(name string) (*Variable, bool) {
	v, ok := s.frames[len(s.frames)-1].Variables[name]

	return v, ok
}

// DeclareFunction records a user function in frame level.
func (s *ScopeStack) DeclareFunction(level int, name string) {
	if f := s.Frame(level); f != nil {
		f.Functions = append(f.Functions, name)
	}
}

// HasFunction reports whether any frame records the user function name.
func (s *ScopeStack) HasFunction(name string) bool {
	for _, f := range s.frames {
		for _, fn := range f.Functions {
			if fn == name {
				return true
			}
		}
	}

	return false
}
