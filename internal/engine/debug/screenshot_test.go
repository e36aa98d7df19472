package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/gpu/softgpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

func fixedClock() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "scene")
	sc.now = fixedClock

	assert.Equal(t, filepath.Join("shots", "scene_2024-03-01_12-30-00.png"), sc.GenerateFilename())
	assert.Equal(t, filepath.Join("shots", "scene_2024-03-01_12-30-00_1.png"), sc.GenerateFilename())

	sc.SetOutputDir("")
	assert.Equal(t, "scene_2024-03-01_12-30-00_2.png", sc.GenerateFilename())
}

func TestCaptureFromDevice(t *testing.T) {
	dev := softgpu.New(4, 3)
	dev.Clear(gpu.ClearOp{ClearColor: true, Color: math.Vec4{X: 1, W: 1}})
	require.NoError(t, dev.Err())

	sc := NewScreenshotCapture(filepath.Join(t.TempDir(), "out"), "frame")
	sc.now = fixedClock
	path, err := sc.CaptureFromDevice(dev, nil)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}
