package framebuffer

import "testing"

func TestMipLevels(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{256, 256, 9},
		{800, 600, 10},
		{1600, 900, 11},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.w, tt.h); got != tt.want {
			t.Errorf("MipLevels(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}
