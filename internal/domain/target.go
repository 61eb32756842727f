package domain

import "sync"

// Target is an addressable host under test with findings accumulated across
// phases. Mutation is restricted to insert/append/dedup operations on single
// fields so concurrent command completions never overwrite each other; the
// embedded mutex guards individual field updates, not whole-record swaps.
type Target struct {
	mu sync.Mutex

	Addr            string
	Hostname        string
	openPorts       []int
	services        map[int]string
	vulnerabilities []string
	exploited       bool
	shells          []string
	credentials     []string
	notes           []string
}

// NewTarget creates a target keyed by its network address.
func NewTarget(addr string) *Target {
	return &Target{
		Addr:     addr,
		services: make(map[int]string),
	}
}

// AddPort records an open port, ignoring duplicates.
func (t *Target) AddPort(port int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.openPorts {
		if p == port {
			return
		}
	}
	t.openPorts = append(t.openPorts, port)
}

// SetService records the service descriptor observed on a port.
func (t *Target) SetService(port int, descriptor string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.services == nil {
		t.services = make(map[int]string)
	}
	t.services[port] = descriptor
}

// AddVulnerability appends a vulnerability description, preserving insertion
// order and suppressing duplicates.
func (t *Target) AddVulnerability(desc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range t.vulnerabilities {
		if v == desc {
			return
		}
	}
	t.vulnerabilities = append(t.vulnerabilities, desc)
}

// MarkExploited latches the exploited flag. Once set it is never reset within
// a campaign.
func (t *Target) MarkExploited() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exploited = true
}

// AddShell appends a shell/session descriptor.
func (t *Target) AddShell(descriptor string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shells = append(t.shells, descriptor)
}

// AddCredential appends a captured credential string.
func (t *Target) AddCredential(cred string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credentials = append(t.credentials, cred)
}

// AddNote appends a free-text note.
func (t *Target) AddNote(note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notes = append(t.notes, note)
}

// OpenPorts returns a copy of the recorded open ports.
func (t *Target) OpenPorts() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.openPorts...)
}

// Services returns a copy of the port -> service descriptor map.
func (t *Target) Services() map[int]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]string, len(t.services))
	for port, svc := range t.services {
		out[port] = svc
	}
	return out
}

// Vulnerabilities returns a copy of the vulnerability list in insertion order.
func (t *Target) Vulnerabilities() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.vulnerabilities...)
}

// Exploited reports whether the target was compromised during this campaign.
func (t *Target) Exploited() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exploited
}

// Shells returns a copy of the shell descriptors.
func (t *Target) Shells() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.shells...)
}

// Credentials returns a copy of the credential list.
func (t *Target) Credentials() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.credentials...)
}

// Notes returns a copy of the note list.
func (t *Target) Notes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.notes...)
}
