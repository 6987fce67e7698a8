package engine

import "strings"

// excludedAttributes are immutable or system-maintained attributes that
// never participate in update comparison: password material, object class
// and identifiers, timestamps, the naming attribute and the account-name
// attribute. Keys are lowercased.
var excludedAttributes = map[string]struct{}{
	"unicodepwd":        {},
	"userpassword":      {},
	"pwdlastset":        {},
	"objectclass":       {},
	"objectguid":        {},
	"objectsid":         {},
	"whencreated":       {},
	"whenchanged":       {},
	"usnchanged":        {},
	"usncreated":        {},
	"cn":                {},
	"name":              {},
	"distinguishedname": {},
	"samaccountname":    {},
}

// ComparableAttributes filters the desired attribute names down to those
// that participate in update comparison.
func ComparableAttributes(desired map[string]string) []string {
	names := make([]string, 0, len(desired))
	for name := range desired {
		if _, excluded := excludedAttributes[strings.ToLower(name)]; excluded {
			continue
		}
		names = append(names, name)
	}
	return names
}

// NeedsUpdate reports whether the desired attribute set materially differs
// from the directory's current values. Excluded attributes are ignored.
// For the rest: two empty or missing values are equal, an empty and a
// non-empty value differ, and non-empty values compare case-insensitively.
// Case-insensitive comparison applies to every attribute (mail,
// userPrincipalName, display and name attributes alike); directory servers
// treat these values as case-preserving but not case-significant.
func NeedsUpdate(desired, current map[string]string) bool {
	for name, want := range desired {
		if _, excluded := excludedAttributes[strings.ToLower(name)]; excluded {
			continue
		}
		if !attributeEqual(want, lookupFold(current, name)) {
			return true
		}
	}
	return false
}

// lookupFold returns current[name] matching the attribute name
// case-insensitively, since directory servers report attribute names in
// their schema casing.
func lookupFold(current map[string]string, name string) string {
	if v, ok := current[name]; ok {
		return v
	}
	for k, v := range current {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// attributeEqual compares two attribute values under the engine's equality
// contract.
func attributeEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" && b == "" {
		return true
	}
	return strings.EqualFold(a, b)
}
