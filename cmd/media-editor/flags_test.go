package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/aliskhannn/media-editor/internal/model"
)

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    model.CropRectangle
		wantErr bool
	}{
		{in: "10,20,300,200", want: model.CropRectangle{X: 10, Y: 20, Width: 300, Height: 200}},
		{in: " 0, 0 ,1.5,2 ", want: model.CropRectangle{Width: 1.5, Height: 2}},
		{in: "1,2,3", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "0,0,0,10", wantErr: true},
		{in: "-1,0,10,10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCrop(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: want=%v got=%v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("crop: want=%+v got=%+v", tt.want, got)
			}
		})
	}
}

func parse(t *testing.T, args ...string) (*options, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return o, o.resolve(fs)
}

func TestResolve(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"minimal", []string{"--asset", id}, false},
		{"missing asset", nil, true},
		{"bad asset", []string{"--asset", "x"}, true},
		{"bad variant", []string{"--asset", id, "--variant", "x"}, true},
		{"unknown action", []string{"--asset", id, "--action", "publish"}, true},
		{"use-for without context", []string{"--asset", id, "--action", "use-for"}, true},
		{"use-for with context", []string{"--asset", id, "--action", "use-for", "--context", "Hero"}, false},
		{"unknown reset", []string{"--asset", id, "--reset", "sharpness"}, true},
		{"known resets", []string{"--asset", id, "--reset", "crop+zoom,all-filters"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: want=%v got=%v", tt.wantErr, err)
			}
		})
	}
}

func TestOnlyGivenSlidersOverride(t *testing.T) {
	o, err := parse(t, "--asset", uuid.NewString(), "--brightness", "120", "--hue", "30")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	start := model.FilterState{Brightness: 90, Contrast: 80, Saturation: 70, Hue: 0}
	got := applySliders(start, o.sliders)
	want := model.FilterState{Brightness: 120, Contrast: 80, Saturation: 70, Hue: 30}
	if got != want {
		t.Fatalf("filters: want=%+v got=%+v", want, got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Hero":            "hero",
		"  Black & White": "black-white",
		"16:9 wide":       "16-9-wide",
		"!!!":             "untitled",
	}

	for in, want := range tests {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q): want=%q got=%q", in, want, got)
		}
	}
}
