package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
)

func TestProductNames(t *testing.T) {
	tests := []struct {
		p    Product
		name string
		file string
	}{
		{ProductRG, "rg", "heightmap_rg.png"},
		{ProductRelief, "relief", "heightmap_relief.png"},
		{ProductRGBMask, "mask", "rgb_mask.png"},
		{ProductCustom, "custom", "custom_color_map.png"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", tt.p, got, tt.name)
		}
		if got := tt.p.FileName(); got != tt.file {
			t.Errorf("%d.FileName() = %q, want %q", tt.p, got, tt.file)
		}
		p, err := ParseProduct(tt.name)
		if err != nil || p != tt.p {
			t.Errorf("ParseProduct(%q) = %v, %v", tt.name, p, err)
		}
	}

	_, err := ParseProduct("svg")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
	assert.Equal(t, "", Product(9).FileName())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Request
		want Request
	}{
		{
			name: "custom implies mask and relief",
			in:   Request{Custom: true},
			want: Request{Custom: true, RGBMask: true, Relief: true},
		},
		{
			name: "mask implies relief",
			in:   Request{RGBMask: true, TrackMaskPath: "t.png"},
			want: Request{RGBMask: true, Relief: true, TrackMaskPath: "t.png"},
		},
		{
			name: "track mask dropped without mask",
			in:   Request{Relief: true, TrackMaskPath: "t.png"},
			want: Request{Relief: true},
		},
		{
			name: "rg alone untouched",
			in:   Request{RG: true},
			want: Request{RG: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, got.Normalize(), "idempotent")
		})
	}
}

func TestValidateMultiplier(t *testing.T) {
	tests := []struct {
		m     float64
		valid bool
	}{
		{1, true},
		{0.01, true},
		{math.MaxFloat64, true},
		{0, false},
		{-1, false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
		{math.NaN(), false},
	}
	for _, tt := range tests {
		err := ValidateMultiplier(tt.m)
		if tt.valid {
			assert.NoError(t, err, "multiplier %g", tt.m)
		} else {
			assert.True(t, errs.Is(err, errs.ErrCodeMultiplierInvalid), "multiplier %g", tt.m)
		}
	}
}

func TestDefaultRequest(t *testing.T) {
	r := DefaultRequest()
	assert.True(t, r.Relief)
	assert.False(t, r.RGBMask)
	assert.Equal(t, 0.3, r.LowerBound)
	assert.Equal(t, 0.6, r.UpperBound)
	assert.NoError(t, r.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code errs.Code
	}{
		{"nothing selected", Request{}, errs.ErrCodeInvalidInput},
		{"rg only", Request{RG: true}, ""},
		{"zero multiplier", Request{Relief: true}, errs.ErrCodeMultiplierInvalid},
		{"negative multiplier", Request{Relief: true, Multiplier: -1}, errs.ErrCodeMultiplierInvalid},
		{"infinite multiplier", Request{Relief: true, Multiplier: math.Inf(1)}, errs.ErrCodeMultiplierInvalid},
		{"all black colors", Request{Relief: true, RGBMask: true, Custom: true, Multiplier: 1, UpperBound: 1}, ""},
		{"inverted bounds", Request{Relief: true, RGBMask: true, Multiplier: 1, LowerBound: 0.5, UpperBound: 0.2}, errs.ErrCodeBoundsInvalid},
		{"bound above one", Request{Relief: true, RGBMask: true, Multiplier: 1, LowerBound: 0.5, UpperBound: 1.5}, errs.ErrCodeBoundsInvalid},
		{"negative bound", Request{Relief: true, RGBMask: true, Multiplier: 1, LowerBound: -0.1, UpperBound: 0.5}, errs.ErrCodeBoundsInvalid},
		{"equal bounds", Request{Relief: true, RGBMask: true, Multiplier: 1, LowerBound: 0.4, UpperBound: 0.4}, ""},
		{"zero bounds", Request{Relief: true, RGBMask: true, Multiplier: 1}, ""},
		{"bounds ignored without mask", Request{Relief: true, Multiplier: 1, LowerBound: 0.9, UpperBound: 0.1}, ""},
		{"wide color", Request{Relief: true, RGBMask: true, Custom: true, Multiplier: 1, UpperBound: 1, Colors: heightmap.ColorQuad{Red: 0x1000000}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "error: %v", err)
		})
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Plan
	}{
		{"rg", Request{RG: true}, Plan{StepLoad, StepRG}},
		{"relief", Request{Relief: true}, Plan{StepLoad, StepGradient}},
		{"mask", Request{RGBMask: true}, Plan{StepLoad, StepGradient, StepMask}},
		{"mask with track", Request{RGBMask: true, TrackMaskPath: "t"}, Plan{StepLoad, StepGradient, StepMask, StepOverlay}},
		{"everything", Request{RG: true, Custom: true, TrackMaskPath: "t"}, Plan{StepLoad, StepRG, StepGradient, StepMask, StepOverlay, StepCustom}},
		{"custom without track", Request{Custom: true}, Plan{StepLoad, StepGradient, StepMask, StepCustom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := tt.req.Normalize().Plan()
			assert.Equal(t, tt.want, plan)
			assert.Equal(t, len(tt.want), plan.Total())
		})
	}
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "gradient", StepGradient.String())
	assert.Equal(t, "overlay", StepOverlay.String())
	assert.Equal(t, "step(42)", Step(42).String())
}

func TestWants(t *testing.T) {
	r := Request{Custom: true}.Normalize()
	for _, p := range Products {
		assert.Equal(t, p != ProductRG, r.Wants(p), p.String())
	}
}
