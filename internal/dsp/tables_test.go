package dsp

import "testing"

func TestTablesMonotone(t *testing.T) {
	for q := 1; q < TcTableLen; q++ {
		if TcAt(q) < TcAt(q-1) {
			t.Errorf("tc[%d]=%d < tc[%d]=%d", q, TcAt(q), q-1, TcAt(q-1))
		}
	}
	for q := 1; q < BetaTableLen; q++ {
		if BetaAt(q) < BetaAt(q-1) {
			t.Errorf("beta[%d]=%d < beta[%d]=%d", q, BetaAt(q), q-1, BetaAt(q-1))
		}
	}
}

func TestTc(t *testing.T) {
	tests := []struct {
		qp, bs, offset, want int
	}{
		{32, 1, 0, 3},
		{32, 2, 0, 3},
		{51, 2, 0, 24},
		{51, 2, 12, 24}, // clipped to the last entry
		{0, 1, -12, 0},  // clipped to the first entry
		{17, 1, 0, 0},
		{18, 1, 0, 1},
		{30, 1, 3, 3}, // odd offsets lose their low bit
	}
	for _, tt := range tests {
		if got := Tc(tt.qp, tt.bs, tt.offset); got != tt.want {
			t.Errorf("Tc(%d, %d, %d) = %d, want %d", tt.qp, tt.bs, tt.offset, got, tt.want)
		}
	}
}

func TestTcPanicsOnZeroStrength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Tc with bs=0 did not panic")
		}
	}()
	Tc(30, 0, 0)
}

func TestBeta(t *testing.T) {
	tests := []struct {
		qp, offset, want int
	}{
		{32, 0, 26},
		{51, 0, 64},
		{51, 12, 64},
		{16, 0, 6},
		{15, 0, 0},
		{20, -4, 6},
	}
	for _, tt := range tests {
		if got := Beta(tt.qp, tt.offset); got != tt.want {
			t.Errorf("Beta(%d, %d) = %d, want %d", tt.qp, tt.offset, got, tt.want)
		}
	}
}

func TestChromaTc(t *testing.T) {
	tests := []struct {
		name          string
		qp, qpOffset  int
		subsampled420 bool
		want          int
	}{
		{"below mapping", 29, 0, true, TcAt(31)},
		{"mapped", 35, 0, true, TcAt(33 + 2)},
		{"above mapping", 50, 0, true, TcAt(44 + 2)},
		{"444 identity", 35, 0, false, TcAt(37)},
		{"444 clipped", 51, 6, false, TcAt(53)},
		{"offset", 30, 5, true, TcAt(33 + 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChromaTc(tt.qp, tt.qpOffset, 0, tt.subsampled420); got != tt.want {
				t.Errorf("ChromaTc = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClipTables(t *testing.T) {
	for v := -255; v <= 511; v++ {
		want := uint8(clip3(0, 255, v))
		if got := Kclip1(v); got != want {
			t.Fatalf("Kclip1(%d) = %d, want %d", v, got, want)
		}
		if got := Clip8b(v); got != want {
			t.Fatalf("Clip8b(%d) = %d, want %d", v, got, want)
		}
	}
	for v := -255; v <= 255; v++ {
		if got := int(Kabs0(v)); got != iabs(v) {
			t.Fatalf("Kabs0(%d) = %d", v, got)
		}
	}
}
