package application

import (
	"encoding/json"
	"errors"
	"strings"
)

// Multipart forms deliver the JSON-typed profile fields as plain strings;
// these helpers normalize them before persistence.

// ParseInterests accepts either a JSON string array or a comma-separated
// list and returns an ordered list of trimmed, non-empty entries.
func ParseInterests(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return trimNonEmpty(parsed)
		}
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseSocialLinks decodes a JSON object of platform → URL.
func ParseSocialLinks(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}, nil
	}
	var links map[string]string
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, errors.New("social links must be a JSON object of platform to URL")
	}
	if links == nil {
		links = map[string]string{}
	}
	return links, nil
}
