package directory

import "strings"

// ParentDN strips the leading RDN from a distinguished name, yielding the
// path of the containing node ("CN=u,OU=6A,DC=x" -> "OU=6A,DC=x"). Escaped
// commas inside RDN values are respected. A DN without a parent returns "".
func ParentDN(dn string) string {
	escaped := false
	for i, r := range dn {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			return strings.TrimSpace(dn[i+1:])
		}
	}
	return ""
}
