package policy

// Resolver computes effective tool sets from a Policy against a
// catalog of registered tools, mirroring the teacher's
// Resolver.IsAllowed / FilterAllowed shape (internal/tools/policy/resolver.go)
// but implementing spec §4.3's exact algebra instead of the teacher's
// group-expansion rules.
type Resolver struct{}

// NewResolver returns a Resolver. It carries no state today but keeps
// the teacher's constructor shape for symmetry with other components
// that take one.
func NewResolver() *Resolver { return &Resolver{} }

// IsAllowed reports whether toolName is in the effective set implied by
// policy alone (profile ∪ allow) \ deny, ignoring optionality and
// availability. ProfileFull allows everything not denied, matching the
// teacher's full-profile special case.
func (r *Resolver) IsAllowed(p *Policy, toolName string) bool {
	if p == nil {
		return false
	}
	deny := normalize(p.Deny)
	if deny[toolName] {
		return false
	}
	if p.Profile == ProfileFull {
		return true
	}
	allow := normalize(p.Allow)
	if allow[toolName] {
		return true
	}
	for _, t := range profileTools[p.Profile] {
		if t == toolName {
			return true
		}
	}
	return false
}

// Effective computes spec §4.3's effective tool set:
//
//	effective = (profile_tools ∪ agent.tool_allow) \ agent.tool_deny \ unavailable
//
// tools is the full registered catalog; unavailable names tools whose
// required env var or command is absent (populated by callers via each
// tool's own availability check). Non-optional tools are included even
// when neither the profile nor the allow list names them explicitly,
// per spec §3 ("optional: included only when explicitly allowed").
func (r *Resolver) Effective(p *Policy, tools []ToolInfo, unavailable map[string]bool) []string {
	if p == nil {
		p = &Policy{Profile: ProfileMinimal}
	}
	deny := normalize(p.Deny)

	var out []string
	for _, t := range tools {
		if deny[t.Name] {
			continue
		}
		if unavailable[t.Name] {
			continue
		}
		if !t.Optional {
			out = append(out, t.Name)
			continue
		}
		if r.IsAllowed(p, t.Name) {
			out = append(out, t.Name)
		}
	}
	return out
}
