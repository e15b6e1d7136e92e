package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
)

const minimalSceneFile = `materials:
  white: {type: lambertian, albedo: [0.9, 0.9, 0.9]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: white}
`

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"three-spheres", "Three Spheres"},
		{"glass_bubble", "Glass Bubble"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, titleCase(tc.input))
		})
	}
}

func TestParseYAMLMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.yaml",
			content: `# Scene: Glass Spheres
# Variant: Bubbles
# Description: Hollow glass spheres over a gray floor
# Group: Glass Studies
` + minimalSceneFile,
			expected: SceneInfo{
				ID:          "yaml:complete_metadata",
				Name:        "Glass Spheres",
				DisplayName: "Glass Spheres - Bubbles",
				Description: "Hollow glass spheres over a gray floor",
				Group:       "Glass Studies",
				Type:        "yaml",
				Variant:     "Bubbles",
			},
		},
		{
			name: "partial_metadata.yaml",
			content: `# Scene: Marbles
# Description: A few marbles
` + minimalSceneFile,
			expected: SceneInfo{
				ID:          "yaml:partial_metadata",
				Name:        "Marbles",
				DisplayName: "Marbles",
				Description: "A few marbles",
				Group:       "Scene Files",
				Type:        "yaml",
			},
		},
		{
			name:    "no_metadata.yaml",
			content: minimalSceneFile,
			expected: SceneInfo{
				ID:          "yaml:no_metadata",
				Name:        "No Metadata", // From filename
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "yaml",
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)

			result, err := ParseYAMLMetadata(path)
			require.NoError(t, err)

			tc.expected.FilePath = path
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParseYAMLMetadata_EdgeCases(t *testing.T) {
	dir := t.TempDir()

	malformed := writeSceneFile(t, dir, "malformed.yaml", "#Scene: Missing space\n#Variant:\n# Description:   Extra spaces\n"+minimalSceneFile)
	result, err := ParseYAMLMetadata(malformed)
	require.NoError(t, err)
	assert.Equal(t, "Missing space", result.Name)
	assert.Equal(t, "Extra spaces", result.Description)
	assert.Equal(t, "Missing space", result.DisplayName, "empty variant is ignored")

	mixed := writeSceneFile(t, dir, "mixed.yaml", "# Scene: Test Scene\nname: x\n# Variant: Ignored\n"+minimalSceneFile)
	result, err = ParseYAMLMetadata(mixed)
	require.NoError(t, err)
	assert.Equal(t, "Test Scene", result.DisplayName)
	assert.Empty(t, result.Variant)

	// Missing files fall back to values derived from the name
	result, err = ParseYAMLMetadata(filepath.Join(dir, "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "yaml:nonexistent", result.ID)
}

func TestListYAMLScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "b-scene.yaml", "# Scene: Beta\n"+minimalSceneFile)
	writeSceneFile(t, dir, "a-scene.yml", "# Scene: Alpha\n"+minimalSceneFile)
	writeSceneFile(t, dir, "notes.txt", "not a scene")

	scenes, err := ListYAMLScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "Alpha", scenes[0].DisplayName)
	assert.Equal(t, "Beta", scenes[1].DisplayName)

	missing, err := ListYAMLScenes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "marbles.yaml", "# Scene: Marbles\n# Group: Toys\n"+minimalSceneFile)

	response, err := ListAllScenes(dir)
	require.NoError(t, err)
	require.Len(t, response.Groups, 2)

	builtIn := response.Groups[0]
	assert.Equal(t, "Built-in Scenes", builtIn.Name)
	var ids []string
	for _, s := range builtIn.Scenes {
		ids = append(ids, s.ID)
		assert.Equal(t, "builtin", s.Type)
		assert.NotEmpty(t, s.DisplayName)
	}
	assert.Equal(t, []string{"default", "random-spheres", "spheregrid", "single-sphere"}, ids)

	toys := response.Groups[1]
	assert.Equal(t, "Toys", toys.Name)
	require.Len(t, toys.Scenes, 1)
	assert.True(t, strings.HasPrefix(toys.Scenes[0].ID, "yaml:"))
}

func TestFindSceneAndCreateFromInfo(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "marbles.yaml", minimalSceneFile)

	info, err := FindScene("yaml:marbles", dir)
	require.NoError(t, err)
	s, err := CreateFromInfo(info)
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetPrimitiveCount())

	info, err = FindScene("single-sphere", dir)
	require.NoError(t, err)
	s, err = CreateFromInfo(info)
	require.NoError(t, err)
	assert.Equal(t, "single-sphere", s.Name)

	_, err = FindScene("cornell-box", dir)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestCreate(t *testing.T) {
	for _, info := range BuiltInScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Create(info.ID)
			require.NoError(t, err)
			assert.Equal(t, info.ID, s.Name)
			assert.NotEmpty(t, s.Shapes)

			_, err = s.NewCamera()
			assert.NoError(t, err)
		})
	}

	path := writeSceneFile(t, t.TempDir(), "file-scene.yaml", minimalSceneFile)
	s, err := Create(path)
	require.NoError(t, err)
	assert.Equal(t, "file-scene", s.Name)

	_, err = Create("no-such-scene")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestBundledSceneFiles(t *testing.T) {
	scenes, err := ListYAMLScenes("../../scenes")
	require.NoError(t, err)
	require.NotEmpty(t, scenes)

	for _, info := range scenes {
		t.Run(info.ID, func(t *testing.T) {
			assert.Equal(t, "Classic", info.Group)
			s, err := CreateFromInfo(info)
			require.NoError(t, err)
			assert.Greater(t, s.GetPrimitiveCount(), 1)
			_, err = s.NewCamera()
			assert.NoError(t, err)
		})
	}
}
