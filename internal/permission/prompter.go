package permission

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"vapajomi/internal/ui"
)

// GrantStore persists answers between runs.
type GrantStore interface {
	PermissionGrant(name string) (granted, known bool)
	SetPermissionGrant(name string, granted bool)
}

// Asker shows one yes/no question per capability. It blocks until answered.
type Asker interface {
	AskPermission(c Capability) (bool, error)
}

// Prompter is the desktop stand-in for the OS permission subsystem.
// Grants live in the store; Request asks for each capability in turn.
type Prompter struct {
	store GrantStore
	asker Asker
	d     ui.Dispatcher

	mu      sync.Mutex
	pending bool
}

// NewPrompter creates a prompter delivering results through d.
func NewPrompter(store GrantStore, asker Asker, d ui.Dispatcher) *Prompter {
	return &Prompter{store: store, asker: asker, d: d}
}

// Granted reports the stored answer; unknown means not granted.
func (p *Prompter) Granted(c Capability) bool {
	granted, _ := p.store.PermissionGrant(string(c))
	return granted
}

// Request asks for every capability in caps. A request made while another
// is showing is answered with an empty result set.
func (p *Prompter) Request(code int, caps []Capability, done ResultFunc) {
	caps = slices.Clone(caps)

	p.mu.Lock()
	if p.pending {
		p.mu.Unlock()
		p.d.Post(func() { done(code, caps, nil) })
		return
	}
	p.pending = true
	p.mu.Unlock()

	go func() {
		results := make([]bool, 0, len(caps))
		for _, c := range caps {
			ok, err := p.asker.AskPermission(c)
			if err != nil {
				// Dialog dismissed or unavailable: the whole request is void.
				log.Warn("permission prompt failed", "capability", c, "err", err)
				results = nil
				break
			}
			p.store.SetPermissionGrant(string(c), ok)
			results = append(results, ok)
		}

		p.mu.Lock()
		p.pending = false
		p.mu.Unlock()

		p.d.Post(func() { done(code, caps, results) })
	}()
}
