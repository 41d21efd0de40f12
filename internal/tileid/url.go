package tileid

import (
	"strconv"
	"strings"
)

// ExpandTemplate substitutes a SurfaceInfo/BoundLayer URL template's
// "{lod}", "{x}", "{y}" tokens with id's coordinates.
func ExpandTemplate(tpl string, id ID) string {
	r := strings.NewReplacer(
		"{lod}", strconv.FormatUint(uint64(id.Lod), 10),
		"{x}", strconv.FormatUint(uint64(id.X), 10),
		"{y}", strconv.FormatUint(uint64(id.Y), 10),
	)
	return r.Replace(tpl)
}
