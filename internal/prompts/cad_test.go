package prompts

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
)

const cubeRequest = "a 50mm cube with a 10mm hole"

func TestGetTemplate(t *testing.T) {
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			tmpl, err := GetTemplate(v)
			if err != nil {
				t.Fatalf("GetTemplate(%q) error: %v", v, err)
			}
			if tmpl.Variant() != v {
				t.Errorf("Variant() = %q, want %q", tmpl.Variant(), v)
			}
			if got := strings.Count(tmpl.Text(), Slot); got != 1 {
				t.Errorf("slot count = %d, want 1", got)
			}
		})
	}
}

func TestGetTemplate_Unknown(t *testing.T) {
	for _, name := range []string{"nonexistent", "", "Basic", "ENHANCED", " basic"} {
		t.Run(name, func(t *testing.T) {
			tmpl, err := GetTemplate(Variant(name))
			if !errors.Is(err, ErrUnknownVariant) {
				t.Fatalf("GetTemplate(%q) error = %v, want ErrUnknownVariant", name, err)
			}
			if tmpl.Text() != "" {
				t.Errorf("GetTemplate(%q) returned partial template", name)
			}
		})
	}
}

func TestParseVariant(t *testing.T) {
	got, err := ParseVariant("enhanced")
	if err != nil {
		t.Fatalf("ParseVariant error: %v", err)
	}
	if got != Enhanced {
		t.Errorf("ParseVariant = %q, want %q", got, Enhanced)
	}

	if _, err := ParseVariant("nonexistent"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("ParseVariant(nonexistent) error = %v, want ErrUnknownVariant", err)
	}
}

func TestRender_Unknown(t *testing.T) {
	got, err := Render("nonexistent", cubeRequest)
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("Render error = %v, want ErrUnknownVariant", err)
	}
	if got != "" {
		t.Errorf("Render returned partial output %q", got)
	}
}

func TestRender_MissingRequest(t *testing.T) {
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			got, err := Render(v, "")
			if !errors.Is(err, ErrMissingRequest) {
				t.Fatalf("Render(%q, \"\") error = %v, want ErrMissingRequest", v, err)
			}
			if got != "" {
				t.Errorf("Render returned output for missing request")
			}
		})
	}
}

func TestRender_ZeroTemplate(t *testing.T) {
	var tmpl Template
	if _, err := tmpl.Render(cubeRequest); err == nil {
		t.Fatal("zero Template should not render")
	}
}

func TestRender_Verbatim(t *testing.T) {
	requests := []string{
		cubeRequest,
		"   ",
		"a bracket with {curly} braces and %s %d verbs",
		"nested slot " + Slot + " should stay literal",
		"{{user_request}}{{user_request}}",
		"multi\nline\n\trequest with `backticks` and \"quotes\"",
		"unicode: 直径 20 mm ⌀ ±0.1",
		`backslashes \n \t \\ and $HOME ${VAR}`,
	}

	for _, v := range Variants() {
		tmpl, err := GetTemplate(v)
		if err != nil {
			t.Fatalf("GetTemplate(%q) error: %v", v, err)
		}
		before, after, _ := strings.Cut(tmpl.Text(), Slot)

		for _, req := range requests {
			t.Run(string(v)+"/"+req, func(t *testing.T) {
				got, err := tmpl.Render(req)
				if err != nil {
					t.Fatalf("Render error: %v", err)
				}
				if want := before + req + after; got != want {
					t.Errorf("rendered text differs from template with request at slot")
				}
				if !strings.HasPrefix(got[len(before):], req) {
					t.Errorf("request not found at slot position")
				}
				if !strings.Contains(req, Slot) && strings.Contains(got, Slot) {
					t.Errorf("rendered prompt still contains %s", Slot)
				}
				if !strings.Contains(got, OutputPath) {
					t.Errorf("rendered prompt missing %s", OutputPath)
				}
			})
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	for _, v := range Variants() {
		first, err := Render(v, cubeRequest)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", v, err)
		}
		second, err := Render(v, cubeRequest)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", v, err)
		}
		if first != second {
			t.Errorf("Render(%q) not deterministic", v)
		}
	}
}

func TestRender_OutputPathIdenticalAcrossVariants(t *testing.T) {
	for _, v := range Variants() {
		got, err := Render(v, cubeRequest)
		if err != nil {
			t.Fatalf("Render(%q) error: %v", v, err)
		}
		if !strings.Contains(got, "/data/output.FCStd") {
			t.Errorf("%s prompt missing /data/output.FCStd", v)
		}
	}
}

func TestRender_EnhancedSupersetOfBasic(t *testing.T) {
	basic, err := Render(Basic, cubeRequest)
	if err != nil {
		t.Fatalf("Render(basic) error: %v", err)
	}
	enhanced, err := Render(Enhanced, cubeRequest)
	if err != nil {
		t.Fatalf("Render(enhanced) error: %v", err)
	}

	mandates := []string{
		"Import FreeCAD and needed modules",
		"Build the geometry corresponding to the user description.",
		"Save the resulting document to a file called /data/output.FCStd",
		"Do NOT add explanations or comments outside the python code. Only output valid python code.",
		cubeRequest,
	}
	for _, m := range mandates {
		if !strings.Contains(basic, m) {
			t.Errorf("basic prompt missing %q", m)
		}
		if !strings.Contains(enhanced, m) {
			t.Errorf("enhanced prompt missing %q", m)
		}
	}

	enhancedOnly := []string{
		"## Examples",
		"## FreeCAD API Reference",
		"App.newDocument",
		"App.setActiveDocument",
		"inline `#` comment",
		"named variable",
	}
	for _, phrase := range enhancedOnly {
		if !strings.Contains(enhanced, phrase) {
			t.Errorf("enhanced prompt missing %q", phrase)
		}
		if strings.Contains(basic, phrase) {
			t.Errorf("basic prompt should not contain %q", phrase)
		}
	}

	if len(enhanced) <= len(basic) {
		t.Errorf("enhanced prompt (%d bytes) not longer than basic (%d bytes)", len(enhanced), len(basic))
	}
}

func TestEnhanced_ReferenceCoversPrimitives(t *testing.T) {
	tmpl, err := GetTemplate(Enhanced)
	if err != nil {
		t.Fatalf("GetTemplate error: %v", err)
	}
	calls := []string{
		"Part.makeBox", "Part.makeCylinder", "Part.makeSphere", "Part.makeCone",
		"Part.LineSegment", "Part.makeCircle", "Part.makePolygon",
		".cut(", ".fuse(", ".common(",
		".translate(", ".rotate(",
		".extrude(", ".revolve(", "makePipeShell",
		"makeFillet",
		"Part.show", "doc.saveAs",
	}
	text := tmpl.Text()
	for _, c := range calls {
		if !strings.Contains(text, c) {
			t.Errorf("enhanced template missing %q", c)
		}
	}
}

func TestRender_Concurrent(t *testing.T) {
	want, err := Render(Enhanced, cubeRequest)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Render(Enhanced, cubeRequest)
			if err != nil || got != want {
				errs <- "concurrent render diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestParseTemplate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: "save to " + OutputPath + "\n" + Slot + "\n"},
		{name: "no slot", text: "save to " + OutputPath, wantErr: true},
		{name: "two slots", text: Slot + OutputPath + Slot, wantErr: true},
		{name: "stray placeholder", text: Slot + OutputPath + "{{other}}", wantErr: true},
		{name: "no output path", text: "save somewhere " + Slot, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"templates/test.md": &fstest.MapFile{Data: []byte(tt.text)},
			}
			_, err := parseTemplate("test", fsys)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTemplate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTemplate_MissingFile(t *testing.T) {
	if _, err := parseTemplate("absent", fstest.MapFS{}); err == nil {
		t.Fatal("parseTemplate should fail for a missing file")
	}
}
