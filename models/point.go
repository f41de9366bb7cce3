package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Point is a longitude/latitude pair. Stored as a postgres point, which
// round-trips as "(x,y)" text; older rows (and some clients) send a JSON
// object instead, so Scan accepts both encodings.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.Lng, p.Lat)
}

func (Point) GormDataType() string {
	return "point"
}

func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Point) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return p.parse(string(v))
	case string:
		return p.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into Point", value)
	}
}

func (p *Point) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "{") {
		return p.parseObject(s)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return fmt.Errorf("malformed point %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("malformed point %q: %v", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("malformed point %q: %v", s, err)
	}
	p.Lng, p.Lat = lng, lat
	return nil
}

// parseObject handles the structured encoding, either {"lng","lat"} or the
// legacy {"x","y"} key names.
func (p *Point) parseObject(s string) error {
	var obj struct {
		Lng *float64 `json:"lng"`
		Lat *float64 `json:"lat"`
		X   *float64 `json:"x"`
		Y   *float64 `json:"y"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return fmt.Errorf("malformed point %q: %v", s, err)
	}
	switch {
	case obj.Lng != nil && obj.Lat != nil:
		p.Lng, p.Lat = *obj.Lng, *obj.Lat
	case obj.X != nil && obj.Y != nil:
		p.Lng, p.Lat = *obj.X, *obj.Y
	default:
		return fmt.Errorf("malformed point %q", s)
	}
	return nil
}
