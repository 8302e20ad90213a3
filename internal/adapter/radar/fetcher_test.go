package radar

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// encodedGIF returns a w×h GIF with every pixel set to code except (1, 2), which is 186.
func encodedGIF(t *testing.T, w, h int, code uint8) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	for i := range img.Pix {
		img.Pix[i] = code
	}
	img.SetColorIndex(1, 2, 186)

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, &gif.Options{NumColors: 256}))
	return buf.Bytes()
}

func TestDecode_GIFKeepsPaletteIndices(t *testing.T) {
	frame, err := Decode(bytes.NewReader(encodedGIF(t, 8, 6, 3)))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 8, 6), frame.Bounds())
	assert.Equal(t, uint8(3), frame.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(186), frame.ColorIndexAt(1, 2))
}

func TestDecode_NonPalettedRejected(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	rgba.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, rgba))

	_, err := Decode(&buf)
	require.ErrorIs(t, err, ErrNotIndexed)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotIndexed)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.gif")
	require.NoError(t, os.WriteFile(path, encodedGIF(t, 4, 4, 0), 0o600))

	frame, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Bounds().Dx())

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.gif"))
	require.Error(t, err)
}

func TestFetcher_FetchFrame_Success(t *testing.T) {
	payload := encodedGIF(t, 10, 10, 204)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Radar/caz_chn.gif", r.URL.Path)
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/Radar/caz_chn.gif", 5*time.Second, discardLogger())
	assert.Equal(t, srv.URL+"/Radar/caz_chn.gif", f.URL())

	frame, err := f.FetchFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(204), frame.ColorIndexAt(5, 5))
}

func TestFetcher_FetchFrame_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("radar offline"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second, discardLogger())
	_, err := f.FetchFrame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "radar offline")
}

func TestFetcher_FetchFrame_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 50*time.Millisecond, discardLogger())
	_, err := f.FetchFrame(context.Background())
	require.Error(t, err)
}

func TestFetcher_FetchFrame_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(srv.URL, 5*time.Second, discardLogger())
	_, err := f.FetchFrame(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
