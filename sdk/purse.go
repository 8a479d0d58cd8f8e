package sdk

import "strings"

// Purse names a native-coin balance holder.
type Purse string

const (
	pursePrefix     = "uref-"
	mainPursePrefix = "uref-main-"
)

// String returns the raw purse reference for logging or host calls.
func (p Purse) String() string {
	return string(p)
}

// IsMain reports whether p is the main purse of an account.
func (p Purse) IsMain() bool {
	return strings.HasPrefix(p.String(), mainPursePrefix)
}

// IsValid checks the purse reference shape.
func (p Purse) IsValid() bool {
	s := p.String()
	return strings.HasPrefix(s, pursePrefix) && len(s) > len(pursePrefix) && !strings.ContainsAny(s, "|\x00 ")
}
