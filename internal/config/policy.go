package config

import (
	"git.home.luguber.info/inful/livebuild/internal/foundation/normalization"
)

// StepPolicy decides what the pipeline does when a step fails.
type StepPolicy string

const (
	// PolicyFailFast aborts the remaining steps.
	PolicyFailFast StepPolicy = "fail_fast"
	// PolicyBestEffort records a warning and continues with the next step.
	PolicyBestEffort StepPolicy = "best_effort"
)

var stepPolicyNormalizer = normalization.NewNormalizer("step policy", map[string]StepPolicy{
	"fail_fast":   PolicyFailFast,
	"best_effort": PolicyBestEffort,
}, PolicyFailFast)

// ParseStepPolicy converts raw into a StepPolicy, rejecting unknown values.
func ParseStepPolicy(raw string) (StepPolicy, error) {
	return stepPolicyNormalizer.Parse(raw)
}

// DefaultPolicies maps pipeline step names to their policy when the config is silent.
// The geode bundle and native build steps keep the launcher's historical
// fire-and-forget behaviour; a failed compile stops before a stale artifact is deployed.
func DefaultPolicies() map[string]StepPolicy {
	return map[string]StepPolicy{
		"build":        PolicyFailFast,
		"deploy":       PolicyFailFast,
		"bundle":       PolicyBestEffort,
		"native_build": PolicyBestEffort,
		"launch":       PolicyFailFast,
	}
}

// LegacyPolicies is DefaultPolicies as the positional gamepath.txt launcher
// behaved: a failed compile still deploys whatever artifact exists, and the
// game's exit status is ignored.
func LegacyPolicies() map[string]StepPolicy {
	p := DefaultPolicies()
	p["build"] = PolicyBestEffort
	p["launch"] = PolicyBestEffort
	return p
}

// PolicyFor returns the configured policy for step, falling back to DefaultPolicies.
func (c *Config) PolicyFor(step string) StepPolicy {
	if p, ok := c.Policies[step]; ok && p != "" {
		return p
	}
	if p, ok := DefaultPolicies()[step]; ok {
		return p
	}
	return PolicyFailFast
}
