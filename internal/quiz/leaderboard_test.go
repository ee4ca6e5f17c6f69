package quiz

import "testing"

// Ranking: correct answers descending, then fewer total answers, then join
// order.
func TestLeaderboardOrdering(t *testing.T) {
	s := NewSession(1, makeQuestions(3), 100)
	// A: 2 correct of 3. B: 2 correct of 2 (joined late). C: 3 of 3.
	s.AddParticipant(1, "a", "A")
	s.AddParticipant(3, "c", "C")

	s.StartQuestion()
	s.RecordAnswer(1, "a", true)
	s.RecordAnswer(3, "a", true)
	s.EndQuestion()
	s.Advance()

	s.StartQuestion()
	s.AddParticipant(2, "b", "B")
	s.RecordAnswer(1, "b", false)
	s.RecordAnswer(2, "a", true)
	s.RecordAnswer(3, "a", true)
	s.EndQuestion()
	s.Advance()

	s.StartQuestion()
	s.RecordAnswer(1, "a", true)
	s.RecordAnswer(2, "a", true)
	s.RecordAnswer(3, "a", true)
	s.EndQuestion()
	s.Advance()

	board := s.Leaderboard()
	want := []int64{3, 2, 1} // C 3/3, B 2/2 beats A 2/3 on fewer totals
	if len(board) != len(want) {
		t.Fatalf("leaderboard size = %d, want %d", len(board), len(want))
	}
	for i, id := range want {
		if board[i].UserID != id {
			t.Errorf("place %d = user %d, want %d", i+1, board[i].UserID, id)
		}
	}
}

func TestLeaderboardTiesKeepJoinOrder(t *testing.T) {
	s := NewSession(1, makeQuestions(1), 100)
	s.AddParticipant(10, "", "First")
	s.AddParticipant(20, "", "Second")

	s.StartQuestion()
	s.RecordAnswer(10, "a", true)
	s.RecordAnswer(20, "a", true)
	s.EndQuestion()
	s.Advance()

	board := s.Leaderboard()
	if board[0].UserID != 10 || board[1].UserID != 20 {
		t.Errorf("tied participants reordered: got [%d %d]", board[0].UserID, board[1].UserID)
	}
}

func TestWinner(t *testing.T) {
	if _, ok := Winner(nil); ok {
		t.Error("Winner(nil) reported a winner")
	}
	board := []Participant{{UserID: 7}, {UserID: 8}}
	w, ok := Winner(board)
	if !ok || w.UserID != 7 {
		t.Errorf("Winner() = (%v, %v), want user 7", w.UserID, ok)
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		pct   float64
		group Band
		solo  Band
	}{
		{100, BandExcellent, BandExcellent},
		{95, BandExcellent, BandExcellent},
		{90, BandExcellent, BandGood},
		{89.9, BandGood, BandGood},
		{70, BandGood, BandGood},
		{69.9, BandDefault, BandDefault},
		{0, BandDefault, BandDefault},
	}

	for _, tt := range tests {
		if got := GroupWinnerBand(tt.pct); got != tt.group {
			t.Errorf("GroupWinnerBand(%.1f) = %v, want %v", tt.pct, got, tt.group)
		}
		if got := SoloResultBand(tt.pct); got != tt.solo {
			t.Errorf("SoloResultBand(%.1f) = %v, want %v", tt.pct, got, tt.solo)
		}
	}
}

func TestExplanationsPerParticipant(t *testing.T) {
	s := NewSession(1, makeQuestions(2), 100)
	s.AddParticipant(1, "", "A")

	s.StartQuestion()
	s.RecordAnswer(1, "b", false)
	s.EndQuestion()
	s.Advance()

	// B joins for the second question only.
	s.StartQuestion()
	s.AddParticipant(2, "", "B")
	s.RecordAnswer(1, "a", true)
	s.RecordAnswer(2, "a", true)
	s.EndQuestion()
	s.Advance()

	aView := s.Explanations(1)
	bView := s.Explanations(2)

	if len(aView) != 2 || len(bView) != 2 {
		t.Fatalf("view sizes = %d/%d, want 2/2", len(aView), len(bView))
	}

	if !aView[0].Answered || aView[0].Record.IsCorrect {
		t.Error("A's first record should be an answered, incorrect entry")
	}
	if bView[0].Answered {
		t.Error("B never saw question 1, view must say so")
	}
	if !bView[1].Answered || !bView[1].Record.IsCorrect {
		t.Error("B's second record should be answered and correct")
	}
}

func TestExplanationsUnknownUser(t *testing.T) {
	s := NewSession(1, makeQuestions(2), 100)
	view := s.Explanations(999)
	if len(view) != 2 {
		t.Fatalf("view size = %d, want 2", len(view))
	}
	for _, e := range view {
		if e.Answered {
			t.Error("unknown user's view must hold no answered entries")
		}
	}
}
