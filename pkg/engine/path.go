package engine

import (
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

// TargetOU resolves the destination OU distinguished path for a row. When
// the configured OU column is absent or the row carries no value for it,
// the configured default OU is returned unchanged. Resolution is
// idempotent: the same row and config always yield the same path.
func TargetOU(row Row, cfg *mapping.Config) string {
	if cfg.OUColumn == "" {
		return cfg.DefaultOU
	}

	segment := strings.TrimSpace(row.Value(cfg.OUColumn))
	if segment == "" {
		return cfg.DefaultOU
	}

	return ChildOU(segment, cfg.DefaultOU)
}

// ChildOU composes the distinguished path of an OU named name directly
// under parent ("6A" under "DC=x" -> "OU=6A,DC=x"). The name is escaped
// per the directory's DN grammar.
func ChildOU(name, parent string) string {
	return "OU=" + ldap.EscapeDN(name) + "," + parent
}

// OUName returns the value of the leading RDN of an OU distinguished path
// ("OU=6A,DC=x" -> "6A"). Paths without a leading OU RDN return "".
func OUName(path string) string {
	dn, err := ldap.ParseDN(path)
	if err != nil || len(dn.RDNs) == 0 {
		return ""
	}
	rdn := dn.RDNs[0]
	if len(rdn.Attributes) == 0 || !strings.EqualFold(rdn.Attributes[0].Type, "OU") {
		return ""
	}
	return rdn.Attributes[0].Value
}

// EqualDN compares two distinguished paths ignoring case and insignificant
// whitespace around RDN separators.
func EqualDN(a, b string) bool {
	da, err := ldap.ParseDN(a)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	db, err := ldap.ParseDN(b)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return da.EqualFold(db)
}
