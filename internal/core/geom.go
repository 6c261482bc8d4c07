// Package core provides fundamental types and utilities for neonsnake.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "fmt"

// Coord is a cell on the square grid. (0,0) is the top-left cell.
type Coord struct {
	X, Y int
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the neighbouring cell in direction d.
func (c Coord) Step(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns |dx| + |dy| between two cells.
func (c Coord) Manhattan(other Coord) int {
	return Abs(c.X-other.X) + Abs(c.Y-other.Y)
}

// InSquare reports whether the cell lies inside [0,size) on both axes.
func (c Coord) InSquare(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Direction is an absolute heading on the grid.
// The constant order is the clockwise cycle Up -> Right -> Down -> Left.
type Direction int

const (
	DirUp Direction = iota
	DirRight
	DirDown
	DirLeft
)

// Directions lists all headings in clockwise order.
var Directions = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Delta returns the (dx, dy) offset of one step in this direction.
// Y grows downward, so Up is -1.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the 180-degree reversal of d.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// TurnRight rotates d by +90 degrees.
func (d Direction) TurnRight() Direction {
	return (d + 1) % 4
}

// TurnLeft rotates d by -90 degrees.
func (d Direction) TurnLeft() Direction {
	return (d + 3) % 4
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirLeft
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection converts the String form back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "UP":
		return DirUp, nil
	case "DOWN":
		return DirDown, nil
	case "LEFT":
		return DirLeft, nil
	case "RIGHT":
		return DirRight, nil
	}
	return 0, fmt.Errorf("core: unknown direction %q", s)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
