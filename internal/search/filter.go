// Package search provides query filtering for the receiver directory
package search

import (
	"strconv"
	"strings"

	"github.com/rxbook/rxbook-go/internal/receiver"
)

// Filter holds the parsed criteria of a directory query
type Filter struct {
	Query      string
	OnlineOnly bool
	Bands      []string
	MinMHz     float64
	MaxMHz     float64
	textQuery  string // name/location portion, upper-cased
}

// PresetOnline returns a filter for receivers that can be tuned
func PresetOnline() *Filter {
	return &Filter{Query: "online", OnlineOnly: true}
}

// PresetHF returns a filter for receivers covering HF
func PresetHF() *Filter {
	return &Filter{Query: "band:hf", Bands: []string{"HF"}}
}

// ParseQuery parses a query string into a Filter.
// Supported syntax:
//   - plain text: matches name or location
//   - "online": online receivers only
//   - "band:vhf" or "band:hf,uhf": any of the listed bands
//   - "mhz:>100", "mhz:<30", "mhz:100-200": center frequency bounds
func ParseQuery(query string) *Filter {
	f := &Filter{Query: query}
	if query == "" {
		return f
	}

	var textParts []string
	for _, token := range strings.Fields(query) {
		lower := strings.ToLower(token)

		switch {
		case lower == "online":
			f.OnlineOnly = true
		case strings.HasPrefix(lower, "band:"):
			for _, b := range strings.Split(token[5:], ",") {
				if b = strings.TrimSpace(b); b != "" {
					f.Bands = append(f.Bands, strings.ToUpper(b))
				}
			}
		case strings.HasPrefix(lower, "mhz:"):
			parseFrequencyFilter(token[4:], f)
		default:
			textParts = append(textParts, token)
		}
	}

	f.textQuery = strings.ToUpper(strings.Join(textParts, " "))
	return f
}

func parseFrequencyFilter(s string, f *Filter) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}

	if strings.Contains(s, "-") && !strings.HasPrefix(s, "-") {
		parts := strings.SplitN(s, "-", 2)
		if min, err := strconv.ParseFloat(parts[0], 64); err == nil {
			f.MinMHz = min
		}
		if max, err := strconv.ParseFloat(parts[1], 64); err == nil {
			f.MaxMHz = max
		}
		return
	}

	switch {
	case strings.HasPrefix(s, ">"):
		if v, err := strconv.ParseFloat(s[1:], 64); err == nil {
			f.MinMHz = v
		}
	case strings.HasPrefix(s, "<"):
		if v, err := strconv.ParseFloat(s[1:], 64); err == nil {
			f.MaxMHz = v
		}
	default:
		// a bare value is a lower bound
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.MinMHz = v
		}
	}
}

// bands splits a frequency range label such as "HF, VHF"
func bands(label string) []string {
	var out []string
	for _, b := range strings.Split(label, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, strings.ToUpper(b))
		}
	}
	return out
}

// Matches returns true if r satisfies every criterion of f
func Matches(r receiver.Receiver, f *Filter) bool {
	if f == nil {
		return true
	}

	if f.OnlineOnly && !r.Online() {
		return false
	}
	if f.MinMHz > 0 && r.CenterMHz < f.MinMHz {
		return false
	}
	if f.MaxMHz > 0 && r.CenterMHz > f.MaxMHz {
		return false
	}

	if len(f.Bands) > 0 {
		found := false
		for _, have := range bands(r.FrequencyRange) {
			for _, want := range f.Bands {
				if have == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}

	if f.textQuery != "" {
		name := strings.ToUpper(r.Name)
		location := strings.ToUpper(r.Location)
		if !strings.Contains(name, f.textQuery) && !strings.Contains(location, f.textQuery) {
			return false
		}
	}
	return true
}

// Apply returns the receivers matching f in directory order
func Apply(receivers []receiver.Receiver, f *Filter) []receiver.Receiver {
	out := make([]receiver.Receiver, 0, len(receivers))
	for _, r := range receivers {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// IsActive returns true if the filter has any criteria
func (f *Filter) IsActive() bool {
	if f == nil {
		return false
	}
	return f.OnlineOnly ||
		len(f.Bands) > 0 ||
		f.MinMHz > 0 ||
		f.MaxMHz > 0 ||
		f.textQuery != ""
}

// Description returns a compact summary of the active criteria
func (f *Filter) Description() string {
	if !f.IsActive() {
		return ""
	}

	var parts []string
	if f.textQuery != "" {
		parts = append(parts, "\""+f.textQuery+"\"")
	}
	if f.OnlineOnly {
		parts = append(parts, "ONLINE")
	}
	if len(f.Bands) > 0 {
		parts = append(parts, "BAND:"+strings.Join(f.Bands, ","))
	}

	mhz := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case f.MinMHz > 0 && f.MaxMHz > 0:
		parts = append(parts, "MHZ:"+mhz(f.MinMHz)+"-"+mhz(f.MaxMHz))
	case f.MinMHz > 0:
		parts = append(parts, "MHZ>"+mhz(f.MinMHz))
	case f.MaxMHz > 0:
		parts = append(parts, "MHZ<"+mhz(f.MaxMHz))
	}
	return strings.Join(parts, " ")
}

// HighlightMatch splits text around the first match of the text query
func (f *Filter) HighlightMatch(text string) (before, match, after string) {
	if f == nil || f.textQuery == "" {
		return text, "", ""
	}
	idx := strings.Index(strings.ToUpper(text), f.textQuery)
	if idx == -1 {
		return text, "", ""
	}
	end := idx + len(f.textQuery)
	return text[:idx], text[idx:end], text[end:]
}
