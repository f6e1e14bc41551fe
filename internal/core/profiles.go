package core

import (
	"fmt"
	"sort"
	"sync"
)

// Profile is a named, reusable validation setup: which rules apply to which
// columns and how the source sheet is labelled in diagnostics.
type Profile struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	SheetLabel string `json:"sheetLabel"`

	// Rules builds a fresh rule set for each ingestion.
	Rules func() RuleSet `json:"-"`
}

// Validator builds a validator for the profile.
func (p Profile) Validator() *Validator {
	var rules RuleSet
	if p.Rules != nil {
		rules = p.Rules()
	}
	return NewValidator(rules, p.SheetLabel)
}

// DefaultProfileKey names the profile used when a request does not pick one.
const DefaultProfileKey = "mapping"

var (
	profiles   = make(map[string]Profile)
	profilesMu sync.RWMutex
)

// Register adds a profile to the registry.
// Panics if a profile with the same key is already registered.
func Register(p Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()

	if _, exists := profiles[p.Key]; exists {
		panic(fmt.Sprintf("profile already registered: %s", p.Key))
	}
	if p.Label == "" {
		p.Label = p.Key
	}
	profiles[p.Key] = p
}

// Replace registers p, overwriting any profile with the same key.
// Used for profiles loaded from rule files at startup.
func Replace(p Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	if p.Label == "" {
		p.Label = p.Key
	}
	profiles[p.Key] = p
}

// Lookup returns a profile by key.
func Lookup(key string) (Profile, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	p, ok := profiles[key]
	return p, ok
}

// Profiles returns every registered profile sorted by key.
func Profiles() []Profile {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ResolveProfile returns the profile registered under key. The default key
// falls back to DefaultRuleSet when nothing is registered under it.
func ResolveProfile(key string) (Profile, error) {
	if p, ok := Lookup(key); ok {
		return p, nil
	}
	if key == DefaultProfileKey {
		return Profile{Key: key, Label: "Default", Rules: DefaultRuleSet}, nil
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, key)
}

// ClearProfiles removes all registered profiles.
// Primarily useful for testing.
func ClearProfiles() {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles = make(map[string]Profile)
}

// ProfileFromConfig wraps a loaded rule file as a profile.
func ProfileFromConfig(key, label string, cfg *RuleConfig) Profile {
	return Profile{
		Key:        key,
		Label:      label,
		SheetLabel: cfg.SheetLabel,
		Rules:      func() RuleSet { return cfg.Rules },
	}
}
