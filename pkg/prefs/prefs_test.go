package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "hmaputil", FileName))
	require.NoError(t, err)
	return s
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p, err := newStore(t).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
	assert.Equal(t, 1.0, p.Multiplier)
	assert.Equal(t, Colors{Red: "ff0000", Green: "00ff00", Blue: "0000ff", Black: "000000"}, p.Colors)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	want := Prefs{
		Source:     "/maps/valley.png",
		Multiplier: 2.5,
		LowerBound: 0.1,
		UpperBound: 0.9,
		TrackMask:  "/maps/track.bmp",
		Colors:     Colors{Red: "123456", Green: "00ff00", Blue: "0000ff", Black: "ffffff"},
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("prefs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("multiplier = 3.0\n[colors]\nred = \"abcdef\"\n"), 0600))

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Multiplier)
	assert.Equal(t, pipeline.DefaultLowerBound, p.LowerBound)
	assert.Equal(t, "abcdef", p.Colors.Red)
	assert.Equal(t, "00ff00", p.Colors.Green)
}

func TestLoadInvalidFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("multiplier = = ="), 0600))

	p, err := s.Load()
	assert.Error(t, err)
	assert.Equal(t, Default(), p)
}

func TestReset(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Reset(), "reset without a file")

	require.NoError(t, s.Save(Default()))
	require.NoError(t, s.Reset())
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRequestRoundTrip(t *testing.T) {
	req := pipeline.DefaultRequest()
	req.Multiplier = 1.7
	req.TrackMaskPath = "t.png"
	req.Colors = heightmap.ColorQuad{Red: 0xabcdef, Green: 1, Blue: 2, Black: 3}

	p := FromRequest("src.png", req)
	assert.Equal(t, "src.png", p.Source)
	assert.Equal(t, "000001", p.Colors.Green)

	got, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, req.Multiplier, got.Multiplier)
	assert.Equal(t, req.LowerBound, got.LowerBound)
	assert.Equal(t, req.TrackMaskPath, got.TrackMaskPath)
	assert.Equal(t, req.Colors, got.Colors)
	assert.False(t, got.Relief, "product toggles are not persisted")
}

func TestRequestRejectsBadColor(t *testing.T) {
	p := Default()
	p.Colors.Blue = "xyz"
	_, err := p.Request()
	assert.Error(t, err)
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if _, err := os.UserConfigDir(); err != nil {
		t.Skip(err)
	}
	p, err := DefaultPath()
	require.NoError(t, err)
	if filepath.Dir(filepath.Dir(p)) == dir {
		assert.Equal(t, filepath.Join(dir, "hmaputil", FileName), p)
	}
}
