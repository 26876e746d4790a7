package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/whitted/asset/texture"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/types"
)

func init() {
	log.Silence()
}

func TestBlockScheduler(t *testing.T) {
	for _, name := range []string{"naive", "perfect"} {
		if _, err := blockScheduler(name); err != nil {
			t.Fatalf("[%s] %v", name, err)
		}
	}

	if _, err := blockScheduler("random"); err == nil {
		t.Fatal("expected an error for an unknown scheduler")
	}
}

func TestLoadEnv(t *testing.T) {
	if err := loadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected a missing env file to be ignored; got %v", err)
	}

	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("WHITTED_CMD_TEST_REGION=eu-central-1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv("WHITTED_CMD_TEST_REGION")

	if err := loadEnv(envFile); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WHITTED_CMD_TEST_REGION"); got != "eu-central-1" {
		t.Fatalf("expected env var to be eu-central-1; got %q", got)
	}
}

func TestLoadMissingTexture(t *testing.T) {
	sampler, err := loadTexture(filepath.Join(t.TempDir(), "Earth.bmp"), texture.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if sampler != nil {
		t.Fatalf("expected a nil sampler for a missing texture; got %v", sampler)
	}
}

func TestDescribeObjects(t *testing.T) {
	sc := scene.Default(scene.DefaultTextures{})

	type spec struct {
		index       int
		expGeometry string
		expMaterial string
		expPatterns string
	}
	specs := []spec{
		{1, "center (-10.0, 10.0, -180.0), radius 15.0", "specular(50)", "-"},
		{4, "center (14.0, -12.0, -70.0), radius 3.0", "reflective(0.50)", "-"},
	}

	for index, s := range specs {
		obj := sc.Objects[s.index]
		if got := describeGeometry(obj); got != s.expGeometry {
			t.Fatalf("[spec %d] expected geometry %q; got %q", index, s.expGeometry, got)
		}
		if got := describeMaterial(obj.Material()); got != s.expMaterial {
			t.Fatalf("[spec %d] expected material %q; got %q", index, s.expMaterial, got)
		}
		if got := describePatterns(obj.Material()); got != s.expPatterns {
			t.Fatalf("[spec %d] expected patterns %q; got %q", index, s.expPatterns, got)
		}
	}

	plane := scene.NewInfinitePlane(types.XYZ(0, -15, 0), types.XYZ(0, 2, 0), scene.NewMaterial(types.XYZ(1, 1, 1)))
	expGeometry := "infinite, point (0.0, -15.0, 0.0), normal (0.00, 1.00, 0.00)"
	if got := describeGeometry(plane); got != expGeometry {
		t.Fatalf("expected geometry %q; got %q", expGeometry, got)
	}
	if got := describeMaterial(plane.Material()); got != "diffuse" {
		t.Fatalf("expected diffuse material; got %q", got)
	}
}
