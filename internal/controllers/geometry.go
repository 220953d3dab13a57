package controllers

import (
	"encoding/binary"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// geoJSONToWKB parses a GeoJSON geometry of the expected type and returns WKB bytes.
// An empty string yields nil.
func geoJSONToWKB(raw string, want string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}

	switch g.(type) {
	case *geom.Point:
		if want != "Point" {
			return nil, fmt.Errorf("expected %s geometry, got Point", want)
		}
	case *geom.LineString:
		if want != "LineString" {
			return nil, fmt.Errorf("expected %s geometry, got LineString", want)
		}
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}

	return wkb.Marshal(g, binary.LittleEndian)
}

// wkbToGeoJSON converts WKB bytes into a GeoJSON string
func wkbToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
