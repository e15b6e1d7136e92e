package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `# Scene: Three Spheres
name: three
camera:
  look_from: [13, 2, 3]
  look_at: [0, 0, 0]
  vfov: 20
  aperture: 0.1
  focus_distance: 10
render:
  width: 300
  height: 200
  samples_per_pixel: 50
  max_depth: 10
materials:
  ground: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
  gold:   {type: metal, albedo: goldenrod, fuzz: 0.1}
  glass:  {type: dielectric, index: 1.5}
spheres:
  - {center: [0, -1000, 0], radius: 1000, material: ground}
  - {center: [0, 1, 0], radius: 1, material: glass}
  - {center: [4, 1, 0], radius: 1, material: gold}
`

func TestParseYAMLScene(t *testing.T) {
	scene, err := ParseYAMLScene(strings.NewReader(testScene))
	require.NoError(t, err)

	assert.Equal(t, "three", scene.Name)
	require.NotNil(t, scene.Camera.LookFrom)
	assert.Equal(t, Vec3Value{X: 13, Y: 2, Z: 3}, *scene.Camera.LookFrom)
	assert.Nil(t, scene.Camera.Up)
	assert.Equal(t, 20.0, scene.Camera.VFov)
	assert.Equal(t, 10.0, scene.Camera.FocusDistance)
	assert.Equal(t, YAMLRender{Width: 300, Height: 200, SamplesPerPixel: 50, MaxDepth: 10}, scene.Render)

	assert.Equal(t, []string{"glass", "gold", "ground"}, scene.MaterialNames())
	assert.Equal(t, MaterialDielectric, scene.Materials["glass"].Type)
	assert.Equal(t, 1.5, scene.Materials["glass"].Index)

	require.Len(t, scene.Spheres, 3)
	assert.Equal(t, 1000.0, scene.Spheres[0].Radius)
	assert.Equal(t, "gold", scene.Spheres[2].Material)
}

func TestColorValue(t *testing.T) {
	scene, err := ParseYAMLScene(strings.NewReader(testScene))
	require.NoError(t, err)

	// goldenrod is (218, 165, 32), decoded with gamma 2
	gold := scene.Materials["gold"].Albedo.Vec3()
	assert.InDelta(t, (218.0/255)*(218.0/255), gold.X, 1e-12)
	assert.InDelta(t, (165.0/255)*(165.0/255), gold.Y, 1e-12)
	assert.InDelta(t, (32.0/255)*(32.0/255), gold.Z, 1e-12)

	ground := scene.Materials["ground"].Albedo.Vec3()
	assert.Equal(t, 0.5, ground.X)
}

func TestParseYAMLScene_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"empty", "", "empty"},
		{"unknown field", "spheres: []\nlights: []\n", "lights"},
		{"no spheres", "materials:\n  a: {type: lambertian, albedo: [1, 1, 1]}\n", "no spheres"},
		{
			"unknown material reference",
			"materials:\n  a: {type: lambertian, albedo: [1, 1, 1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: b}\n",
			`sphere 0: unknown material "b"`,
		},
		{
			"unknown material type",
			"materials:\n  shiny: {type: chrome, albedo: [1, 1, 1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: shiny}\n",
			`material "shiny": unknown type "chrome"`,
		},
		{
			"missing albedo",
			"materials:\n  m: {type: metal, fuzz: 0.1}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: m}\n",
			`material "m": metal requires an albedo`,
		},
		{
			"missing index",
			"materials:\n  g: {type: dielectric}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: g}\n",
			`material "g": dielectric requires an index`,
		},
		{
			"short vector",
			"materials:\n  a: {type: lambertian, albedo: [1, 1, 1]}\nspheres:\n  - {center: [0, 0], radius: 1, material: a}\n",
			"3 components",
		},
		{
			"unknown color name",
			"materials:\n  a: {type: lambertian, albedo: notacolor}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: a}\n",
			`unknown color name "notacolor"`,
		},
		{
			"color out of range",
			"materials:\n  a: {type: lambertian, albedo: [2, 0, 0]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: a}\n",
			"outside [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAMLScene(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadYAMLScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my-scene.yaml")
	content := strings.Replace(testScene, "name: three\n", "", 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scene, err := LoadYAMLScene(path)
	require.NoError(t, err)
	assert.Equal(t, "my-scene", scene.Name, "name falls back to the file name")
	assert.Len(t, scene.Spheres, 3)
}

func TestLoadYAMLScene_InvalidPaths(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		errMsg   string
	}{
		{"empty", "", "cannot be empty"},
		{"wrong extension", "scenes/cornell.pbrt", "only .yaml and .yml"},
		{"null byte", "scenes/a\x00.yaml", "null bytes"},
		{"too long", "scenes/" + strings.Repeat("a", 600) + ".yaml", "too long"},
		{"missing file", filepath.Join(os.TempDir(), "does-not-exist.yaml"), "failed to open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAMLScene(tt.filename)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsSceneFile(t *testing.T) {
	assert.True(t, IsSceneFile("a.yaml"))
	assert.True(t, IsSceneFile("dir/B.YML"))
	assert.False(t, IsSceneFile("a.pbrt"))
	assert.False(t, IsSceneFile("yaml"))
}
