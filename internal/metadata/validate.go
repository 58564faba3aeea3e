package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

var attrNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var reservedWindowsNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// ValidateAttrName enforces §3 invariant 7: attr names match
// [A-Za-z][A-Za-z0-9_]* and are not platform-reserved unless allowPlatform
// is set (used only by the data/file write path recording its own
// trac_data_*/trac_file_* attrs).
func ValidateAttrName(name string, allowPlatform bool) error {
	if !attrNamePattern.MatchString(name) {
		return fmt.Errorf("metadata: attr name %q does not match [A-Za-z][A-Za-z0-9_]*", name)
	}
	if allowPlatform {
		return nil
	}
	switch {
	case strings.HasPrefix(name, "trac_data_"), strings.HasPrefix(name, "trac_file_"):
		return fmt.Errorf("metadata: attr name %q uses a reserved trac_data_*/trac_file_* prefix", name)
	case strings.HasPrefix(name, "trac_"):
		return fmt.Errorf("metadata: attr name %q uses the reserved trac_ prefix", name)
	case strings.HasPrefix(name, "__"):
		return fmt.Errorf("metadata: attr name %q uses the reserved __ prefix", name)
	case strings.HasPrefix(name, "_"):
		return fmt.Errorf("metadata: attr name %q uses the reserved _ prefix", name)
	}
	return nil
}

// ValidateFileName enforces §3 invariant 8.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("metadata: file name must not be empty")
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("metadata: file name must not have leading/trailing whitespace")
	}
	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("metadata: file name must not end with a trailing dot")
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("metadata: file name must not contain control characters")
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("metadata: file name must not contain path separators")
		}
		if r == 0 {
			return fmt.Errorf("metadata: file name must not contain NUL")
		}
	}
	if strings.HasPrefix(name, "trac_") || strings.HasPrefix(name, "_") {
		return fmt.Errorf("metadata: file name must not use a reserved trac_/_ prefix")
	}
	base := name
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	if reservedWindowsNames[strings.ToUpper(base)] {
		return fmt.Errorf("metadata: file name %q collides with a reserved Windows device name", name)
	}
	return nil
}

// ValidateTagUpdates checks that every update names a well-formed,
// non-reserved attribute (§4.F step 1).
func ValidateTagUpdates(updates []TagUpdate) error {
	for _, u := range updates {
		if err := ValidateAttrName(u.AttrName, false); err != nil {
			return err
		}
		switch u.Operation {
		case OpCreateAttr, OpReplaceAttr, OpAppendAttr:
			if u.Value == nil {
				return fmt.Errorf("metadata: tag update %s on %q requires a value", u.Operation, u.AttrName)
			}
		case OpDeleteAttr, OpClearAll:
			// no value required
		default:
			return fmt.Errorf("metadata: unknown tag update operation %q", u.Operation)
		}
	}
	return nil
}

// ApplyTagUpdates applies a sequence of TagUpdates to an existing attr map,
// returning a new map. REPLACE against an absent attr is reported via the
// ok=false return so callers can surface FAILED_PRECONDITION (§4.B).
func ApplyTagUpdates(attrs map[string]*Value, updates []TagUpdate) (map[string]*Value, bool, string) {
	out := make(map[string]*Value, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	for _, u := range updates {
		switch u.Operation {
		case OpCreateAttr:
			out[u.AttrName] = u.Value
		case OpReplaceAttr:
			if _, exists := out[u.AttrName]; !exists {
				return nil, false, u.AttrName
			}
			out[u.AttrName] = u.Value
		case OpAppendAttr:
			existing, exists := out[u.AttrName]
			if !exists {
				out[u.AttrName] = &Value{Type: u.Value.Type, Array: []*Value{u.Value}}
				continue
			}
			if existing.Array != nil {
				existing.Array = append(existing.Array, u.Value)
			} else {
				out[u.AttrName] = &Value{Type: existing.Type, Array: []*Value{existing, u.Value}}
			}
		case OpDeleteAttr:
			delete(out, u.AttrName)
		case OpClearAll:
			out = make(map[string]*Value)
		}
	}
	return out, true, ""
}
