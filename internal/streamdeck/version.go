package streamdeck

import (
	"fmt"
	"strconv"
	"strings"
)

// MinimumAppVersion is the oldest deck application the plugin is tested with.
var MinimumAppVersion = Version{Major: 6, Minor: 0}

// Version is a deck application version. The deck reports four parts
// ("6.5.1.19245"); the build number is kept but not compared.
type Version struct {
	Major int
	Minor int
	Patch int
	Build int
}

// ParseVersion parses "6.5", "6.5.1" or "6.5.1.19245".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, fmt.Errorf("invalid version: %q", s)
	}

	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version part %q in %q", p, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: nums[3]}, nil
}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// LessThan returns true if v < other, ignoring the build number.
func (v Version) LessThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// CheckAppVersion reports an error when the deck application in info is
// older than MinimumAppVersion. An unparseable version is not an error.
func CheckAppVersion(info Info) error {
	v, err := ParseVersion(info.Application.Version)
	if err != nil {
		return nil
	}
	if v.LessThan(MinimumAppVersion) {
		return fmt.Errorf("deck application %s is older than %s", v, MinimumAppVersion)
	}
	return nil
}
