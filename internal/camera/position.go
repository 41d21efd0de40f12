package camera

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/melowntech/vtscore/internal/mapconfig"
)

// positionFieldCount matches the comma-separated format of spec §6:
// "obj,lon,lat,fixed,yaw,pitch,roll,0,viewExtent,verticalFov".
const positionFieldCount = 10

// ParsePositionURL parses the comma-separated position string exchanged
// with the host application (spec §4.4 "position-URL round trip").
func ParsePositionURL(s string) (mapconfig.Position, error) {
	fields := strings.Split(s, ",")
	if len(fields) != positionFieldCount {
		return mapconfig.Position{}, fmt.Errorf("camera: position %q has %d fields, want %d", s, len(fields), positionFieldCount)
	}

	f := func(i int) (float64, error) { return strconv.ParseFloat(fields[i], 64) }

	lon, err := f(1)
	if err != nil {
		return mapconfig.Position{}, err
	}
	lat, err := f(2)
	if err != nil {
		return mapconfig.Position{}, err
	}
	yaw, err := f(4)
	if err != nil {
		return mapconfig.Position{}, err
	}
	pitch, err := f(5)
	if err != nil {
		return mapconfig.Position{}, err
	}
	roll, err := f(6)
	if err != nil {
		return mapconfig.Position{}, err
	}
	viewExtent, err := f(8)
	if err != nil {
		return mapconfig.Position{}, err
	}
	verticalFov, err := f(9)
	if err != nil {
		return mapconfig.Position{}, err
	}

	return mapconfig.Position{
		Type:        fields[0],
		Lon:         lon,
		Lat:         lat,
		Fixed:       fields[3] == "1" || strings.EqualFold(fields[3], "true"),
		Yaw:         yaw,
		Pitch:       pitch,
		Roll:        roll,
		ViewExtent:  viewExtent,
		VerticalFov: verticalFov,
	}, nil
}

// FormatPositionURL renders the current camera state back into the same
// comma-separated format ParsePositionURL accepts. The reserved 8th field
// is always emitted as "0" (spec §6 format string's literal "0" slot).
func (s *State) FormatPositionURL(typ string, fixed bool) string {
	fixedField := "0"
	if fixed {
		fixedField = "1"
	}
	return strings.Join([]string{
		typ,
		formatFloat(s.Position[0]),
		formatFloat(s.Position[1]),
		fixedField,
		formatFloat(s.Yaw),
		formatFloat(s.Pitch),
		formatFloat(s.Roll),
		"0",
		formatFloat(s.ViewExtent),
		formatFloat(s.VerticalFov),
	}, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
