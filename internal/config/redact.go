package config

import "regexp"

// Mask replaces sensitive values in Redacted output.
const Mask = "***"

// SensitiveKeys matches setting names whose values never appear in logs.
var SensitiveKeys = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api_?key|secret|token|password|credential)`),
}

// Redacted returns a copy of all settings with sensitive values masked.
func (c *Config) Redacted() map[string]any {
	out := deepCopy(c.v.AllSettings())
	mask(out, SensitiveKeys)
	return out
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopy(sub)
			continue
		}
		out[k] = v
	}
	return out
}

func mask(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			mask(sub, patterns)
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
	}
}
