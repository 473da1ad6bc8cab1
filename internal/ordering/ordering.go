// Package ordering holds the index arithmetic behind reordering and browsing.
//
// Moves wrap around the ends of a collection; browsing does not. The two are
// kept as separate functions so callers cannot mix them up with a flag.
package ordering

import "fmt"

// Direction is a one-step move within an ordered collection.
type Direction string

// Directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// CyclicNeighbor returns the index that i swaps with when moved one step in
// dir within a collection of n elements. Moving the first element up targets
// the last one and moving the last element down targets the first.
// ok is false when n < 2 or i is out of range; such moves are no-ops.
func CyclicNeighbor(n, i int, dir Direction) (j int, ok bool) {
	if n < 2 || i < 0 || i >= n {
		return 0, false
	}
	switch dir {
	case Up:
		return (i - 1 + n) % n, true
	case Down:
		return (i + 1) % n, true
	}
	return 0, false
}

// Wraps reports whether moving index i in dir crosses an end of the collection.
func Wraps(n, i int, dir Direction) bool {
	return (dir == Up && i == 0) || (dir == Down && i == n-1)
}

// BoundedAdjacent returns the indexes before and after i, with -1 where i sits
// at an end. It never wraps.
func BoundedAdjacent(n, i int) (prev, next int) {
	prev, next = -1, -1
	if i < 0 || i >= n {
		return prev, next
	}
	if i > 0 {
		prev = i - 1
	}
	if i < n-1 {
		next = i + 1
	}
	return prev, next
}

// PositionIndex converts a 1-based position into an index, failing when the
// position is outside a collection of n elements.
func PositionIndex(n, position int) (int, error) {
	if position < 1 || position > n {
		return 0, fmt.Errorf("position %d out of range 1..%d", position, n)
	}
	return position - 1, nil
}

// IsPermutation reports whether ids contains exactly the members of want, once each.
func IsPermutation(ids, want []int64) bool {
	if len(ids) != len(want) {
		return false
	}
	seen := make(map[int64]int, len(want))
	for _, id := range want {
		seen[id]++
	}
	for _, id := range ids {
		if seen[id] != 1 {
			return false
		}
		seen[id]--
	}
	return true
}
