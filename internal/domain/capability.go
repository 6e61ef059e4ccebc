package domain

import "sort"

// Capability is an opaque permission tag controlling whether an account
// action is allowed. Membership is exact-string matching; there is no
// hierarchy between capabilities.
type Capability string

const (
	CapabilityListUsers        Capability = "AccountListUsers"
	CapabilityCreateUser       Capability = "AccountCreateUser"
	CapabilityDeleteUser       Capability = "AccountDeleteUser"
	CapabilityGrantCapability  Capability = "AccountGrantCapability"
	CapabilityRevokeCapability Capability = "AccountRevokeCapability"
)

// KnownCapabilities lists every capability this console understands, in
// stable order. The remote service may define more; unknown tags are
// carried through untouched.
func KnownCapabilities() []Capability {
	return []Capability{
		CapabilityListUsers,
		CapabilityCreateUser,
		CapabilityDeleteUser,
		CapabilityGrantCapability,
		CapabilityRevokeCapability,
	}
}

// CapabilitySet is an exact-membership set of capability tags.
type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func (s CapabilitySet) Add(c Capability) {
	s[c] = struct{}{}
}

func (s CapabilitySet) Remove(c Capability) {
	delete(s, c)
}

func (s CapabilitySet) Len() int { return len(s) }

// Sorted returns the members in lexicographic order for stable rendering.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Minus returns s \ other.
func (s CapabilitySet) Minus(other CapabilitySet) CapabilitySet {
	out := make(CapabilitySet)
	for c := range s {
		if !other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Intersect returns s ∩ other.
func (s CapabilitySet) Intersect(other CapabilitySet) CapabilitySet {
	out := make(CapabilitySet)
	for c := range s {
		if other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

func (s CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Strings converts the set to sorted plain strings for wire encoding.
func (s CapabilitySet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, c := range sorted {
		out[i] = string(c)
	}
	return out
}

// CapabilitiesFromStrings builds a set from wire-format tags.
func CapabilitiesFromStrings(raw []string) CapabilitySet {
	s := make(CapabilitySet, len(raw))
	for _, v := range raw {
		if v != "" {
			s[Capability(v)] = struct{}{}
		}
	}
	return s
}

// Grantable returns the capabilities an operator may offer to grant to a
// target: the operator's own set minus what the target already holds. An
// operator can never grant a capability they do not themselves hold.
func Grantable(operator, target CapabilitySet) []Capability {
	return operator.Minus(target).Sorted()
}

// Revocable returns the capabilities an operator may offer to revoke from
// a target: the intersection of the operator's own set with the target's
// current set. A capability the operator could not grant is never offered
// for revocation.
func Revocable(operator, target CapabilitySet) []Capability {
	return operator.Intersect(target).Sorted()
}
