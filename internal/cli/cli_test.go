package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/imageio"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
	"github.com/matzehuels/hmaputil/pkg/prefs"
)

// newTestCLI returns a non-interactive CLI whose config and cache live in
// temporary directories.
func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	return c, &out
}

func execute(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// writeHeightmap writes a sloped 16-bit heightmap and returns its path.
func writeHeightmap(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(x*x*200 + y*150)})
		}
	}
	data, err := imageio.EncodePNG(img)
	require.NoError(t, err)
	path := filepath.Join(dir, "heightmap.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func loadPrefs(t *testing.T) prefs.Prefs {
	t.Helper()
	store, err := prefs.NewStore("")
	require.NoError(t, err)
	p, err := store.Load()
	require.NoError(t, err)
	return p
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "stats", "serve", "config", "cache", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRenderDefaultsToRelief(t *testing.T) {
	c, out := newTestCLI(t)
	dir := t.TempDir()
	input := writeHeightmap(t, dir)

	require.NoError(t, execute(c, "render", input))

	assert.FileExists(t, filepath.Join(dir, "heightmap_relief.png"))
	assert.NoFileExists(t, filepath.Join(dir, "rgb_mask.png"))
	assert.Contains(t, out.String(), "Rendered heightmap.png")
	assert.Contains(t, out.String(), "8×8 px")
	assert.Contains(t, out.String(), iconFresh)

	p := loadPrefs(t)
	assert.Equal(t, input, p.Source)
	assert.Equal(t, 1.0, p.Multiplier)
}

func TestRenderAllProductsIntoOutDir(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())
	outDir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, execute(c, "render", input, "--rg", "--custom", "--black", "#202020", "--out", outDir))

	for _, name := range []string{"heightmap_rg.png", "heightmap_relief.png", "rgb_mask.png", "custom_color_map.png"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	assert.Equal(t, "202020", loadPrefs(t).Colors.Black)
}

func TestRenderReusesRememberedParameters(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	input := writeHeightmap(t, dir)

	require.NoError(t, execute(c, "render", input, "--mask", "--lower", "0.1", "--upper", "0.5", "-m", "2"))

	// No argument and no parameter flags: everything comes from the
	// preferences written by the first run.
	c2 := New(io.Discard, LogInfo)
	c2.Out = io.Discard
	require.NoError(t, execute(c2, "render", "--mask", "--upper", "0.7"))

	p := loadPrefs(t)
	assert.Equal(t, input, p.Source)
	assert.Equal(t, 2.0, p.Multiplier)
	assert.Equal(t, 0.1, p.LowerBound)
	assert.Equal(t, 0.7, p.UpperBound)
	assert.FileExists(t, filepath.Join(dir, "rgb_mask.png"))
}

func TestRenderSecondRunIsCached(t *testing.T) {
	c, out := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())

	require.NoError(t, execute(c, "render", input, "--mask"))
	out.Reset()
	require.NoError(t, execute(c, "render", input, "--mask"))
	assert.Contains(t, out.String(), iconCached)

	out.Reset()
	require.NoError(t, execute(c, "render", input, "--mask", "--refresh"))
	assert.Contains(t, out.String(), iconFresh)
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(input string) []string
		code errs.Code
	}{
		{"no input", func(string) []string { return []string{"render"} }, errs.ErrCodeInputMissing},
		{"missing file", func(input string) []string { return []string{"render", input + ".nope"} }, errs.ErrCodeInputMissing},
		{"inverted bounds", func(input string) []string {
			return []string{"render", input, "--mask", "--lower", "0.8", "--upper", "0.2"}
		}, errs.ErrCodeBoundsInvalid},
		{"zero multiplier", func(input string) []string { return []string{"render", input, "-m", "0"} }, errs.ErrCodeMultiplierInvalid},
		{"infinite multiplier", func(input string) []string { return []string{"render", input, "-m", "inf"} }, errs.ErrCodeMultiplierInvalid},
		{"bad color", func(input string) []string { return []string{"render", input, "--custom", "--red", "xyz"} }, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCLI(t)
			input := writeHeightmap(t, t.TempDir())

			err := execute(c, tt.args(input)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err))

			store, serr := prefs.NewStore("")
			require.NoError(t, serr)
			assert.NoFileExists(t, store.Path(), "failed runs must not be remembered")
		})
	}
}

func TestRenderCustomAllBlack(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	input := writeHeightmap(t, dir)

	require.NoError(t, execute(c, "render", input, "--custom", "--no-cache",
		"--red", "000000", "--green", "000000", "--blue", "000000", "--black", "000000"))

	f, err := os.Open(filepath.Join(dir, pipeline.ProductCustom.FileName()))
	require.NoError(t, err)
	defer f.Close()
	img, err := imageio.DecodeTrackMask(f)
	require.NoError(t, err)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			assert.Zero(t, r|g|bl, "pixel %d,%d", x, y)
		}
	}
	assert.Equal(t, "000000", loadPrefs(t).Colors.Red)
}

func TestRenderNoSave(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())

	require.NoError(t, execute(c, "render", input, "--no-save", "--no-cache"))

	store, err := prefs.NewStore("")
	require.NoError(t, err)
	assert.NoFileExists(t, store.Path())
}

func TestRenderConfigFlag(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")

	require.NoError(t, execute(c, "--config", path, "render", input))
	assert.FileExists(t, path)
}

func TestApplyPrefsKeepsExplicitFlags(t *testing.T) {
	var opts renderOpts
	cmd := &cobra.Command{Use: "render", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Float64Var(&opts.multiplier, "multiplier", 1, "")
	cmd.Flags().Float64Var(&opts.lower, "lower", 0.3, "")
	cmd.Flags().Float64Var(&opts.upper, "upper", 0.6, "")
	cmd.Flags().StringVar(&opts.trackMask, "track-mask", "", "")
	for _, name := range []string{"red", "green", "blue", "black"} {
		cmd.Flags().String(name, "", "")
	}
	require.NoError(t, cmd.Flags().Parse([]string{"--lower", "0.05"}))

	p := prefs.Default()
	p.Multiplier = 3
	p.LowerBound = 0.2
	p.TrackMask = "/tmp/track.png"
	applyPrefs(cmd.Flags(), &opts, p)

	assert.Equal(t, 3.0, opts.multiplier)
	assert.Equal(t, 0.05, opts.lower)
	assert.Equal(t, p.UpperBound, opts.upper)
	assert.Equal(t, "/tmp/track.png", opts.trackMask)
	assert.Equal(t, p.Colors.Red, opts.red)
}

func TestStatsCommand(t *testing.T) {
	c, out := newTestCLI(t)
	dir := t.TempDir()
	input := writeHeightmap(t, dir)
	hist := filepath.Join(dir, "hist.png")

	require.NoError(t, execute(c, "stats", input, "--histogram", hist, "--bins", "8"))

	assert.FileExists(t, hist)
	s := out.String()
	assert.Contains(t, s, "8×8")
	assert.Contains(t, s, "p50")
	assert.Contains(t, s, "render "+input+" --mask")
}

func TestStatsErrors(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())

	err := execute(c, "stats", input, "-m", "-1")
	assert.Equal(t, errs.ErrCodeMultiplierInvalid, errs.GetCode(err))

	err = execute(c, "stats", input, "--low-fraction", "0.9", "--high-fraction", "0.1")
	assert.Equal(t, errs.ErrCodeBoundsInvalid, errs.GetCode(err))
}

func TestConfigCommands(t *testing.T) {
	c, out := newTestCLI(t)
	input := writeHeightmap(t, t.TempDir())
	require.NoError(t, execute(c, "render", input, "-m", "1.5"))

	out.Reset()
	require.NoError(t, execute(c, "config", "show"))
	assert.Contains(t, out.String(), input)
	assert.Contains(t, out.String(), "--multiplier 1.5")

	store, err := prefs.NewStore("")
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, execute(c, "config", "path"))
	assert.Equal(t, store.Path()+"\n", out.String())

	require.NoError(t, execute(c, "config", "reset"))
	assert.NoFileExists(t, store.Path())
	assert.Equal(t, prefs.Default(), loadPrefs(t))
}

func TestCacheCommands(t *testing.T) {
	c, out := newTestCLI(t)

	require.NoError(t, execute(c, "cache", "path"))
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)+"\n", out.String())

	out.Reset()
	require.NoError(t, execute(c, "cache", "clear"))
	assert.Contains(t, out.String(), "Cache is empty")

	input := writeHeightmap(t, t.TempDir())
	require.NoError(t, execute(c, "render", input))

	out.Reset()
	require.NoError(t, execute(c, "cache", "clear"))
	assert.Contains(t, out.String(), "Cleared cached bundles")

	out.Reset()
	require.NoError(t, execute(c, "render", input))
	assert.Contains(t, out.String(), iconFresh)
}

func TestCompletionCommand(t *testing.T) {
	c, out := newTestCLI(t)
	require.NoError(t, execute(c, "completion", "bash"))
	assert.Contains(t, out.String(), appName)

	assert.Error(t, execute(c, "completion", "tcsh"))
}
