package placement

import "fmt"

// Direction is one of the six axis-aligned search directions.
type Direction struct {
	Axis int     // 0 = X, 1 = Y, 2 = Z
	Sign float64 // +1 or -1
}

// Directions lists the six search directions in a fixed order.
var Directions = [6]Direction{
	{0, 1}, {0, -1},
	{1, 1}, {1, -1},
	{2, 1}, {2, -1},
}

func (d Direction) String() string {
	s := "+"
	if d.Sign < 0 {
		s = "-"
	}
	return s + string("xyz"[d.Axis])
}

// ParseDirection accepts names like "+x", "-z" or "x+".
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		name := d.String()
		if s == name || s == name[1:]+name[:1] {
			return d, nil
		}
	}
	return Direction{}, fmt.Errorf("unknown direction %q", s)
}
