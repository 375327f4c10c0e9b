package chaos

import "testing"

func TestScoreFoldsAroundZero(t *testing.T) {
	cases := []struct {
		residual byte
		want     int
	}{
		{0, 0}, {1, 1}, {128, 128}, {129, 127}, {255, 1}, {200, 56},
	}
	for _, c := range cases {
		if got := Score(c.residual); got != c.want {
			t.Errorf("Score(%d) = %d, want %d", c.residual, got, c.want)
		}
	}
}

func TestSingleLevelTableAlwaysBinZero(t *testing.T) {
	tb := NewTable(1)
	for sum := 0; sum < scoreTableSize; sum++ {
		if got := tb.Bin(sum, 0); got != 0 {
			t.Fatalf("Bin with 1 level = %d, want 0", got)
		}
	}
}

func TestTableMonotonicNondecreasing(t *testing.T) {
	tb := NewTable(8)
	prev := 0
	for sum := 0; sum < scoreTableSize; sum++ {
		got := tb.Bin(sum, 0)
		if got < prev {
			t.Fatalf("bin decreased at sum=%d: %d < %d", sum, got, prev)
		}
		if got >= tb.Levels() {
			t.Fatalf("bin %d out of range for %d levels", got, tb.Levels())
		}
		prev = got
	}
}

func TestTableZeroSumIsBinZero(t *testing.T) {
	tb := NewTable(8)
	if got := tb.Bin(0, 0); got != 0 {
		t.Fatalf("Bin(0,0) = %d, want 0", got)
	}
}

func TestRowBufferEdgesScoreZero(t *testing.T) {
	rb := NewRowBuffer(4, 1)
	left, top := rb.Neighbors(0, 0)
	if left != 0 || top != 0 {
		t.Fatalf("first pixel neighbors = (%d,%d), want (0,0)", left, top)
	}
}

func TestRowBufferTracksPreviousRow(t *testing.T) {
	rb := NewRowBuffer(3, 1)
	rb.Set(0, 0, 10)
	rb.Set(0, 1, 20)
	rb.Set(0, 2, 30)
	rb.NextRow()

	_, top := rb.Neighbors(0, 1)
	if top != 20 {
		t.Fatalf("top score after NextRow = %d, want 20", top)
	}

	left, _ := rb.Neighbors(0, 1)
	if left != 0 {
		t.Fatalf("left score at start of fresh row = %d, want 0", left)
	}

	rb.Set(0, 0, 5)
	left, _ = rb.Neighbors(0, 1)
	if left != 5 {
		t.Fatalf("left score after setting column 0 = %d, want 5", left)
	}
}
