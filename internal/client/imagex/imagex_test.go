package imagex

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})))
	return buf.Bytes()
}

func decodedSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestProcess_Dimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape scaled", 3000, 2000, 1920, 1280},
		{"portrait scaled", 2000, 4000, 960, 1920},
		{"exact bound unchanged", 1920, 1080, 1920, 1080},
		{"small unchanged", 640, 480, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Process(pngOf(t, tt.w, tt.h))
			require.NoError(t, err)

			assert.Equal(t, tt.wantW, p.Width)
			assert.Equal(t, tt.wantH, p.Height)

			w, h := decodedSize(t, p.JPEG)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)

			pw, ph := decodedSize(t, p.Preview)
			assert.Equal(t, PreviewSize, pw)
			assert.Equal(t, PreviewSize, ph)
		})
	}
}

func TestProcess_Corrupt(t *testing.T) {
	_, err := Process([]byte("definitely not an image"))
	require.ErrorIs(t, err, common.ErrDecode)

	_, err = Process(nil)
	require.ErrorIs(t, err, common.ErrDecode)
}
