package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,dot,png", []string{"svg", "dot", "png"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "png", "dot", "json"}, false},
		{"pdf unsupported", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		formats []string
		input   string
		output  string
		want    string
	}{
		{"derived from input", "svg", []string{"svg"}, "smith.layout.json", "", "smith.svg"},
		{"plain input", "png", []string{"png"}, "tree.json", "", "tree.png"},
		{"explicit single", "svg", []string{"svg"}, "tree.layout.json", "out/pic.svg", "out/pic.svg"},
		{"explicit base for many", "dot", []string{"svg", "dot"}, "tree.layout.json", "out/pic.svg", "out/pic.dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.format, tt.formats, tt.input, tt.output); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tree.layout.json")
	artifacts := map[string][]byte{
		"dot": []byte("digraph G {}"),
		"svg": []byte("<svg/>"),
	}

	paths, err := writeArtifacts(artifacts, []string{"svg", "dot"}, input, "")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{filepath.Join(dir, "tree.svg"), filepath.Join(dir, "tree.dot")}
	if !slices.Equal(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "digraph G {}" {
		t.Errorf("dot file = %q", data)
	}

	if _, err := writeArtifacts(artifacts, []string{"png"}, input, ""); err == nil {
		t.Error("missing artifact should fail")
	}
}
