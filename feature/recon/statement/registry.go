package statement

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile maps one network's native report headers onto the canonical set.
// Keys are normalized vendor headers (lowercase, underscores), values the
// canonical header they become.
type Profile struct {
	Headers map[string]string `yaml:"headers"`
}

// Registry resolves header profiles per network so vendor report exports
// can be rewritten into canonical form before parsing.
type Registry struct {
	profiles map[string]Profile
}

// registryFile is the YAML shape accepted by LoadRegistry.
type registryFile struct {
	Networks map[string]Profile `yaml:"networks"`
}

// builtinProfiles covers the networks the platform mediates out of the box.
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"admob": {Headers: map[string]string{
			"date":               "event_date",
			"app":                "app_id",
			"ad_unit":            "ad_unit_id",
			"currency_code":      "currency",
			"estimated_earnings": "paid",
		}},
		"unity": {Headers: map[string]string{
			"date":      "event_date",
			"game_id":   "app_id",
			"placement": "ad_unit_id",
			"ad_type":   "format",
			"revenue":   "paid",
		}},
		"ironsource": {Headers: map[string]string{
			"date":        "event_date",
			"app_key":     "app_id",
			"instance_id": "ad_unit_id",
			"ad_unit":     "format",
			"revenue":     "paid",
		}},
		"applovin": {Headers: map[string]string{
			"day":          "event_date",
			"package_name": "app_id",
			"zone_id":      "ad_unit_id",
			"ad_type":      "format",
			"revenue":      "paid",
		}},
	}
}

// DefaultRegistry returns a registry with the built-in vendor profiles.
func DefaultRegistry() *Registry {
	return &Registry{profiles: builtinProfiles()}
}

// LoadRegistry builds a registry from the built-in profiles plus the YAML
// overrides at path. File entries merge header by header over the built-in
// profile of the same network; unknown networks are added whole. An empty
// path returns the defaults.
func LoadRegistry(path string) (*Registry, error) {
	reg := DefaultRegistry()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema registry %s: %w", path, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema registry %s: %w", path, err)
	}

	for network, profile := range file.Networks {
		network = strings.ToLower(network)
		merged, ok := reg.profiles[network]
		if !ok {
			merged = Profile{Headers: map[string]string{}}
		}
		for from, to := range profile.Headers {
			merged.Headers[normalizeHeader(from)] = strings.ToLower(strings.TrimSpace(to))
		}
		reg.profiles[network] = merged
	}

	return reg, nil
}

// Profile returns the header profile for a network, if one is registered.
func (r *Registry) Profile(network string) (Profile, bool) {
	p, ok := r.profiles[strings.ToLower(network)]
	return p, ok
}

// Canonicalize rewrites the header line of a vendor CSV into canonical
// headers using the network's profile. Headers without a mapping keep
// their normalized name; networks without a profile pass through
// untouched.
func (r *Registry) Canonicalize(network, csvText string) string {
	profile, ok := r.Profile(network)
	if !ok {
		return csvText
	}

	headerLine, rest, hasRest := strings.Cut(csvText, "\n")
	headers := strings.Split(headerLine, ",")
	for i, h := range headers {
		name := normalizeHeader(h)
		if canonical, ok := profile.Headers[name]; ok {
			name = canonical
		}
		headers[i] = name
	}

	out := strings.Join(headers, ",")
	if hasRest {
		out += "\n" + rest
	}
	return out
}

// normalizeHeader lowercases a header and folds spaces to underscores, so
// "Ad unit" and "ad_unit" resolve to the same profile key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Trim(h, `"`)
	return strings.ReplaceAll(h, " ", "_")
}
