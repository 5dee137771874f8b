package holdemtable

import (
	"math/rand"
)

func NewDefaultSeats(seatCount int) []*SeatState {
	return make([]*SeatState, seatCount)
}

// RandomSeat picks a random empty seat index, or UnsetValue when the table is
// full.
func RandomSeat(seats []*SeatState) int {
	emptySeats := []int{}
	for idx, s := range seats {
		if s == nil {
			emptySeats = append(emptySeats, idx)
		}
	}
	if len(emptySeats) == 0 {
		return UnsetValue
	}
	return emptySeats[rand.Intn(len(emptySeats))]
}

// findSeatAfter walks clockwise from the seat after `from` and returns the
// first occupied seat accepted by `ok`, or UnsetValue after a full lap.
// Passing from = UnsetValue starts the walk at seat 0.
func findSeatAfter(seats []*SeatState, from int, ok func(*SeatState) bool) int {
	n := len(seats)
	if from == UnsetValue {
		from = n - 1
	}
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if s := seats[idx]; s != nil && ok(s) {
			return idx
		}
	}
	return UnsetValue
}

// seatsInOrderFrom returns the given seat indexes reordered clockwise starting
// at the seat immediately after `anchor`.
func seatsInOrderFrom(indexes []int, anchor, numSeats int) []int {
	ordered := append([]int(nil), indexes...)
	dist := func(seat int) int {
		return ((seat-anchor-1)%numSeats + numSeats) % numSeats
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && dist(ordered[j]) < dist(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

// isSeatPassed reports whether `seat` lies in the clockwise arc (from, to].
// Used to detect that the big blind moved past an absent seat.
func isSeatPassed(from, to, seat, numSeats int) bool {
	if from == UnsetValue || to == UnsetValue {
		return false
	}
	dist := func(x int) int {
		return ((x-from)%numSeats + numSeats) % numSeats
	}
	return dist(seat) != 0 && dist(seat) <= dist(to)
}
