package coord

import "fmt"

func errUnsupportedSrs(s Srs) error {
	return fmt.Errorf("coord: unsupported srs kind %q", s)
}

func errUnsupportedEPSG(epsg int) error {
	return fmt.Errorf("coord: no projection registered for EPSG:%d", epsg)
}
