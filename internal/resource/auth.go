package resource

import "strings"

// hostOf extracts the host component of a URL the same way
// original_source's resourceAuth.cpp's extractUrlHost does: strip the
// scheme up to "://", then cut at the next "/". Scheme-less names (internal
// memory paths) have no host and are exempt from the allow-list.
func hostOf(name string) (host string, hasScheme bool) {
	idx := strings.Index(name, "://")
	if idx < 0 {
		return "", false
	}
	rest := name[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return rest[:slash], true
	}
	return rest, true
}
