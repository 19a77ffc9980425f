package scene

import "testing"

func TestFlagsString(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{0, "None"},
		{FlagIncomplete, "Incomplete"},
		{FlagIncomplete | FlagTerrain, "Incomplete|Terrain"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("Flags(%d).String() = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestMetadataOrder(t *testing.T) {
	var m Metadata
	m.SetString("b", "1")
	m.SetFloat("a", 2)
	m.SetString("b", "3")

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", keys)
	}
	if v, _ := m.GetString("b"); v != "3" {
		t.Errorf("b = %q, want %q", v, "3")
	}
	if _, ok := m.GetString("a"); ok {
		t.Error("GetString on a float entry should fail")
	}
}

func TestEmbeddedRef(t *testing.T) {
	if got := EmbeddedRef(3); got != "*3" {
		t.Errorf("EmbeddedRef(3) = %q", got)
	}
	tests := []struct {
		path string
		idx  int
		ok   bool
	}{
		{"*0", 0, true},
		{"*12", 12, true},
		{"*", 0, false},
		{"*-1", 0, false},
		{"tex.png", 0, false},
	}
	for _, tt := range tests {
		idx, ok := ParseEmbeddedRef(tt.path)
		if idx != tt.idx || ok != tt.ok {
			t.Errorf("ParseEmbeddedRef(%q) = %d, %v; want %d, %v", tt.path, idx, ok, tt.idx, tt.ok)
		}
	}
}

func TestTextureNaming(t *testing.T) {
	tex := Texture{Filename: "diffuse", FormatHint: "JPEG"}
	if tex.Extension() != "jpg" {
		t.Errorf("Extension() = %q, want jpg", tex.Extension())
	}
	if tex.MimeType() != "image/jpeg" {
		t.Errorf("MimeType() = %q", tex.MimeType())
	}
	if got := TextureFilename(&tex, 0); got != "diffuse.jpg" {
		t.Errorf("TextureFilename = %q", got)
	}
	anon := Texture{FormatHint: "png"}
	if got := TextureFilename(&anon, 4); got != "texture_4.png" {
		t.Errorf("TextureFilename = %q", got)
	}
}

func TestIndexSpan(t *testing.T) {
	got := IndexSpan{Start: 2, Count: 3}.Indexes()
	want := []int{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Indexes() = %v, want %v", got, want)
		}
	}
}
