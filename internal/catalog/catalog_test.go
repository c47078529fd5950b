package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Len() < 23 {
		t.Fatalf("expected at least 23 records, got %d", c.Len())
	}

	r, ok := c.Lookup("Tomato___Late_blight")
	if !ok {
		t.Fatal("Tomato___Late_blight missing")
	}
	if r.Name == "" || r.Description == "" || len(r.Symptoms) == 0 || len(r.Treatment) == 0 {
		t.Errorf("incomplete record: %+v", r)
	}

	for _, id := range c.IDs() {
		r, _ := c.Lookup(id)
		if r.Name == "" || r.Description == "" {
			t.Errorf("%s: missing name or description", id)
		}
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"tomato___late_blight", "Tomato___Late_blight ", "Tomato - Late blight", ""} {
		if _, ok := c.Lookup(id); ok {
			t.Errorf("Lookup(%q) should miss", id)
		}
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c, err := Parse([]byte(`
diseases:
  X:
    name: "X"
    description: "d"
    symptoms: ["s1"]
    treatment: ["t1", "t2"]
`))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := c.Lookup("X")
	r.Symptoms[0] = "changed"

	again, _ := c.Lookup("X")
	want := Record{Name: "X", Description: "d", Symptoms: []string{"s1"}, Treatment: []string{"t1", "t2"}}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Errorf("record mutated (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("diseases:\n  A:\n    name: Alpha\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"A"}, c.IDs()); diff != "" {
		t.Errorf("ids mismatch:\n%s", diff)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("diseases:\n  A:\n    description: no name\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for record without a name")
	}

	c, err = Load("")
	if err != nil || c.Len() == 0 {
		t.Errorf("Load(\"\") should return the embedded catalog, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Lookup("anything"); ok {
		t.Error("empty catalog should miss")
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte(`
diseases:
  Apple___Apple_scab:
    name: Apple Scab
    description: Fungal disease.
    symptoms: [Olive-green spots]
    cure: [Remove infected leaves]
`))
	if err == nil {
		t.Fatal("expected error for unknown key cure")
	}
}
