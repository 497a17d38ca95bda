package common

import "testing"

func TestKeccakEmpty(t *testing.T) {
	want := "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := Keccak256Hex(nil); got != want {
		t.Fatalf("Keccak256Hex(nil) = %s, want %s", got, want)
	}
}

func TestSelector(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"balanceOf(address)", "70a08231"},
	}

	for _, tc := range tests {
		if got := SelectorHex(tc.sig); got != tc.want {
			t.Errorf("SelectorHex(%q) = %s, want %s", tc.sig, got, tc.want)
		}
	}
}
