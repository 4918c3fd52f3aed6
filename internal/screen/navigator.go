// Package screen holds the presenters for the login, registration and
// home screens and the back stack that connects them. Everything here
// runs on the UI loop.
package screen

// Screen is one entry of the back stack.
type Screen interface {
	// Start runs once, after the screen becomes current.
	Start()
	// Dispose runs once, when the screen leaves the stack.
	Dispose()
}

// Navigator is the back stack.
type Navigator struct {
	stack    []Screen
	onChange func(Screen)
}

// NewNavigator creates an empty stack. onChange sees every new top,
// including nil when the stack empties.
func NewNavigator(onChange func(Screen)) *Navigator {
	return &Navigator{onChange: onChange}
}

// Push makes s current, keeping the previous screen reachable via Back.
func (n *Navigator) Push(s Screen) {
	n.stack = append(n.stack, s)
	n.changed(s)
	s.Start()
}

// Replace finishes the current screen, or every screen when clearTask is
// set, and makes s current.
func (n *Navigator) Replace(s Screen, clearTask bool) {
	if clearTask {
		n.disposeAll()
	} else if top := n.pop(); top != nil {
		top.Dispose()
	}
	n.Push(s)
}

// Back finishes the current screen. It reports whether a screen remains.
func (n *Navigator) Back() bool {
	top := n.pop()
	if top == nil {
		return false
	}
	top.Dispose()

	current := n.Current()
	n.changed(current)
	return current != nil
}

// Clear disposes every screen.
func (n *Navigator) Clear() {
	n.disposeAll()
	n.changed(nil)
}

// Current is the top of the stack, nil when empty.
func (n *Navigator) Current() Screen {
	if len(n.stack) == 0 {
		return nil
	}
	return n.stack[len(n.stack)-1]
}

// Depth is the number of screens on the stack.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

func (n *Navigator) pop() Screen {
	if len(n.stack) == 0 {
		return nil
	}
	top := n.stack[len(n.stack)-1]
	n.stack[len(n.stack)-1] = nil
	n.stack = n.stack[:len(n.stack)-1]
	return top
}

// disposeAll tears down from the top so each screen sees its successors gone.
func (n *Navigator) disposeAll() {
	for s := n.pop(); s != nil; s = n.pop() {
		s.Dispose()
	}
}

func (n *Navigator) changed(s Screen) {
	if n.onChange != nil {
		n.onChange(s)
	}
}
