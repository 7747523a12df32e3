package paging

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, PageSize},
		{-5, PageSize},
		{1, 1},
		{PageSize, PageSize},
		{MaxPageSize + 1, MaxPageSize},
	}
	for _, c := range cases {
		if got := Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func makeRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestTrimPage_ForwardOverflow(t *testing.T) {
	rows := makeRows(PageSize + 1)
	res := TrimPage(&rows, "", "")
	if len(rows) != PageSize {
		t.Errorf("len after trim: got %d, want %d", len(rows), PageSize)
	}
	if !res.HasNext || res.HasPrev {
		t.Errorf("flags: got %+v, want HasNext only", res)
	}
}

func TestTrimPage_ForwardWithAfterCursor(t *testing.T) {
	rows := makeRows(10)
	res := TrimPage(&rows, "", "somecursor")
	if len(rows) != 10 {
		t.Errorf("short page must not be trimmed, len %d", len(rows))
	}
	if !res.HasPrev || res.HasNext {
		t.Errorf("flags: got %+v, want HasPrev only", res)
	}
}

func TestTrimPage_BackwardOverflow(t *testing.T) {
	rows := makeRows(PageSize + 1)
	res := TrimPage(&rows, "somecursor", "")
	if len(rows) != PageSize {
		t.Errorf("len after trim: got %d, want %d", len(rows), PageSize)
	}
	if rows[0] != 1 {
		t.Errorf("backward trim must drop the first element, got leading %d", rows[0])
	}
	if !res.HasPrev || !res.HasNext {
		t.Errorf("flags: got %+v, want both set", res)
	}
}

func TestReverse(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	Reverse(rows)
	want := []int{4, 3, 2, 1}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("Reverse: got %v, want %v", rows, want)
		}
	}
}

func TestConfigureKeyset_Direction(t *testing.T) {
	if cfg := ConfigureKeyset("", ""); cfg.Direction != Forward || cfg.SortOrder != 1 || cfg.Cursor != nil {
		t.Errorf("empty cursors: got %+v", cfg)
	}
	if cfg := ConfigureKeyset("x", ""); cfg.Direction != Backward || cfg.SortOrder != -1 {
		t.Errorf("before cursor: got %+v", cfg)
	}
}
