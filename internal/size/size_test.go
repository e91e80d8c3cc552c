package size_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hush/internal/size"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100B", want: 100},
		{in: "10KB", want: 10 * 1024},
		{in: "10kb", want: 10 * 1024},
		{in: " 50MB ", want: 50 << 20},
		{in: "2GB", want: 2 << 30},
		{in: "1TB", want: 1 << 40},
		{in: "0B", want: 0},
		{in: "MB", wantErr: true},
		{in: "10", wantErr: true},
		{in: "10XB", wantErr: true},
		{in: "1.5MB", wantErr: true},
		{in: "-1KB", wantErr: true},
		{in: "", wantErr: true},
		{in: "99999999999999999999B", wantErr: true},
		{in: "9999999999TB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := size.Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, size.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{100, "100B"},
		{1024, "1KB"},
		{1536, "1536B"},
		{50 << 20, "50MB"},
		{3 << 30, "3GB"},
		{1 << 40, "1TB"},
		{0, "0B"},
	}

	for _, tt := range tests {
		got := size.Format(tt.in)
		assert.Equal(t, tt.want, got)

		back, err := size.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, tt.in, back)
	}
}
