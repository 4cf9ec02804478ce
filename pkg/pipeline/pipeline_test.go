package pipeline

import (
	"testing"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/foldertree"
	"github.com/matzehuels/entitymap/pkg/layout"
)

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "dot", "png", "json"}, false},
		{nil, false},
		{[]string{"pdf"}, true},
		{[]string{"svg", "SVG"}, true},
		{[]string{""}, true},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%v) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Root: "/tmp/project"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", opts.MaxDepth, DefaultMaxDepth)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent.
	opts.MaxDepth = 3
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.MaxDepth != 3 {
		t.Errorf("second call should be a no-op: depth %d err %v", opts.MaxDepth, err)
	}
}

func TestDefaultFormatsNotAliased(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	opts.Formats[0] = "json"
	if DefaultFormats[0] != "svg" {
		t.Error("mutating options must not change DefaultFormats")
	}
}

func TestValidateForFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"both sources", Options{Root: "/a", TreeFile: "t.json"}, errors.ErrCodeInvalidInput},
		{"blank root", Options{Root: "   "}, errors.ErrCodeInvalidPath},
		{"negative depth", Options{Root: "/a", MaxDepth: -1}, errors.ErrCodeInvalidDepth},
		{"depth too large", Options{Root: "/a", MaxDepth: errors.MaxWalkDepth + 1}, errors.ErrCodeInvalidDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForFetch()
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateForLayoutRejectsBadConfig(t *testing.T) {
	opts := Options{Layout: layout.Config{HorizontalGap: -10}}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestTreeKeyOpts(t *testing.T) {
	opts := Options{MaxDepth: 4}
	w := foldertree.NewWalker([]string{"*.csproj"}, []string{"vendor"})

	k := opts.TreeKeyOpts(w)
	if k.MaxDepth != 4 || len(k.Indicators) != len(w.Indicators) || len(k.Blocklist) != len(w.Blocklist) {
		t.Errorf("TreeKeyOpts = %+v", k)
	}
	if k := opts.TreeKeyOpts(nil); k.Indicators != nil || k.Blocklist != nil {
		t.Errorf("nil walker should leave patterns empty: %+v", k)
	}
}
