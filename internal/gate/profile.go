package gate

// Profile is a named set of capabilities, typically one per role.
type Profile struct {
	name         string
	capabilities map[Capability]bool
}

// NewProfile creates a profile with the given capabilities.
func NewProfile(name string, capabilities ...Capability) *Profile {
	p := &Profile{
		name:         name,
		capabilities: make(map[Capability]bool),
	}
	for _, c := range capabilities {
		p.capabilities[c] = true
	}
	return p
}

func (p *Profile) Name() string { return p.name }

// Capabilities returns all capabilities in this profile.
func (p *Profile) Capabilities() []Capability {
	caps := make([]Capability, 0, len(p.capabilities))
	for c := range p.capabilities {
		caps = append(caps, c)
	}
	return caps
}

// HasCapability checks if the profile grants the requested capability.
// Supports wildcard matching.
func (p *Profile) HasCapability(requested Capability) bool {
	for c := range p.capabilities {
		if c.Matches(requested) {
			return true
		}
	}
	return false
}
