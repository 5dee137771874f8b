package holdemtable

func seatInHand(s *SeatState) bool {
	return s.InHand()
}

func hasCommitment(s *SeatState) bool {
	return s.InHand() && s.Commitment != nil
}

func hasRevealedSecret(s *SeatState) bool {
	return s.InHand() && s.RevealedSecret != nil
}

// inHandSeatsWith lists the seats of the current hand that match pred, in
// seat order.
func (te *tableEngine) inHandSeatsWith(pred func(*SeatState) bool) []int {
	indexes := []int{}
	for idx, s := range te.table.State.Seats {
		if s != nil && s.InHand() && pred(s) {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}
