package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
)

// writeFiles creates files relative to a fresh temporary folder.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func names(objs []*unstructured.Unstructured) []string {
	result := make([]string, 0, len(objs))
	for _, obj := range objs {
		result = append(result, obj.GetName())
	}
	return result
}

func secret(name string) string {
	return "apiVersion: v1\nkind: Secret\nmetadata:\n  name: " + name + "\n"
}

func TestStaticSource_Generate(t *testing.T) {
	source := NewStaticSource("testdata/static", config.DefaultKinds())

	manifests, err := source.Generate(Target{Namespace: "someName"})
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.ElementsMatch(t, []string{"mlpipeline-minio-artifact", "mlpipeline-minio-artifact2"}, names(manifests))

	for _, m := range manifests {
		assert.Equal(t, "someName", m.GetNamespace(), "namespace must be overwritten")
		assert.Equal(t, "Secret", m.GetKind())
		data, found, err := unstructured.NestedStringMap(m.Object, "stringData")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "value", data["AWS_ACCESS_KEY_ID"])
	}
}

func TestStaticSource_DesiredCounts(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/a.yaml":                secret("a"),
		"secrets/b.yml":                 secret("b"),
		"secrets/notes.txt":             "ignored",
		"service-accounts/runner.yaml":  "apiVersion: v1\nkind: ServiceAccount\nmetadata:\n  name: runner\n",
		"extra-namespace-defaults.yaml": "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: defaults\n",
	})

	source := NewStaticSource(root, config.DefaultKinds())

	counts, err := source.DesiredCounts()
	require.NoError(t, err)
	assert.Equal(t, map[api.KindID]int{"Secret.v1": 2, "ServiceAccount.v1": 1}, counts)

	manifests, err := source.Generate(Target{Namespace: "ns"})
	require.NoError(t, err)
	// Root-level files are generated even though no kind counts them
	assert.ElementsMatch(t, []string{"a", "b", "runner", "defaults"}, names(manifests))
}

func TestStaticSource_UntrackedWhenDirectoryMissing(t *testing.T) {
	root := writeFiles(t, map[string]string{"secrets/a.yaml": secret("a")})

	counts, err := NewStaticSource(root, config.DefaultKinds()).DesiredCounts()
	require.NoError(t, err)
	assert.Equal(t, map[api.KindID]int{"Secret.v1": 1}, counts)

	_, tracked := counts["ServiceAccount.v1"]
	assert.False(t, tracked)
}

func TestStaticSource_EmptyDirectoryIsTrackedWithZero(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "secrets"), 0755))

	counts, err := NewStaticSource(root, config.DefaultKinds()).DesiredCounts()
	require.NoError(t, err)
	assert.Equal(t, map[api.KindID]int{"Secret.v1": 0}, counts)
}

func TestStaticSource_MultiDocument(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/bundle.yaml": "---\n" + secret("first") + "---\n# comment only\n---\n" + secret("second"),
	})
	source := NewStaticSource(root, config.DefaultKinds())

	manifests, err := source.Generate(Target{Namespace: "ns"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names(manifests))

	// One file, one desired child, however many documents it holds
	counts, err := source.DesiredCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts["Secret.v1"])
}

func TestStaticSource_ParseErrorAbortsGeneration(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/a-good.yaml":  secret("good"),
		"secrets/b-bad.yaml":   "apiVersion: v1\nkind: Secret\nmetadata: [unterminated\n",
		"secrets/c-after.yaml": secret("after"),
	})
	source := NewStaticSource(root, config.DefaultKinds())

	manifests, err := source.Generate(Target{Namespace: "ns"})
	assert.Nil(t, manifests, "no partial results")
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, filepath.Join(root, "secrets", "b-bad.yaml"), parseErr.Path)

	assert.Error(t, source.Validate())
}

func TestStaticSource_NonMappingDocument(t *testing.T) {
	root := writeFiles(t, map[string]string{"secrets/list.yaml": "- a\n- b\n"})

	_, err := NewStaticSource(root, config.DefaultKinds()).Generate(Target{Namespace: "ns"})
	assert.True(t, IsParseError(err))
}

func TestStaticSource_MissingFolder(t *testing.T) {
	source := NewStaticSource(filepath.Join(t.TempDir(), "absent"), config.DefaultKinds())

	manifests, err := source.Generate(Target{Namespace: "ns"})
	require.NoError(t, err)
	assert.Empty(t, manifests)

	counts, err := source.DesiredCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.Error(t, source.Validate())
}

func TestStaticSource_FreshReadEveryCall(t *testing.T) {
	root := writeFiles(t, map[string]string{"secrets/a.yaml": secret("a")})
	source := NewStaticSource(root, config.DefaultKinds())

	first, err := source.Generate(Target{Namespace: "ns"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, os.WriteFile(filepath.Join(root, "secrets", "b.yaml"), []byte(secret("b")), 0644))

	second, err := source.Generate(Target{Namespace: "ns"})
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestTemplateSource_Generate(t *testing.T) {
	source := NewTemplateSource("testdata/templates", nil)

	manifests, err := source.Generate(Target{Namespace: "team-a"})
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.ElementsMatch(t, []string{"mlpipeline-minio-artifact", "team-a-pipeline-config"}, names(manifests))

	for _, m := range manifests {
		assert.Equal(t, "team-a", m.GetNamespace())
		if m.GetKind() == "ConfigMap" {
			bucket, _, err := unstructured.NestedString(m.Object, "data", "bucket")
			require.NoError(t, err)
			assert.Equal(t, "team-a-artifacts", bucket)
		}
	}
	assert.NoError(t, source.Validate())
}

func TestTemplateSource_KeepsExplicitNamespace(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"shared.j2": "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: shared\n  namespace: kubeflow\n",
	})

	manifests, err := NewTemplateSource(root, nil).Generate(Target{Namespace: "team-a"})
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "kubeflow", manifests[0].GetNamespace())
}

func TestTemplateSource_LabelsInContext(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/owner.j2": "apiVersion: v1\nkind: Secret\nmetadata:\n  name: owner\nstringData:\n  owner: {{ index .labels \"owner\" | quote }}\n",
	})
	source := NewTemplateSource(root, config.DefaultKinds())

	manifests, err := source.Generate(Target{Namespace: "ns", Labels: map[string]string{"owner": "alice"}})
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	owner, _, _ := unstructured.NestedString(manifests[0].Object, "stringData", "owner")
	assert.Equal(t, "alice", owner)

	counts, err := source.DesiredCounts()
	require.NoError(t, err)
	assert.Equal(t, map[api.KindID]int{"Secret.v1": 1}, counts)
}

func TestTemplateSource_ValidateLabelDependentTemplates(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/team.yaml.j2":  "apiVersion: v1\nkind: Secret\nmetadata:\n  name: team\nstringData:\n  team: {{ .labels.team }}\n",
		"secrets/owner.yaml.j2": "apiVersion: v1\nkind: Secret\nmetadata:\n  name: owner\nstringData:\n  owner: {{ index annotations \"owner\" }}\n",
	})
	source := NewTemplateSource(root, config.DefaultKinds())

	assert.NoError(t, source.Validate())

	manifests, err := source.Generate(Target{
		Namespace:   "ns",
		Labels:      map[string]string{"team": "a"},
		Annotations: map[string]string{"owner": "alice"},
	})
	require.NoError(t, err)
	assert.Len(t, manifests, 2)
}

func TestTemplateSource_ValidateRejectsBrokenSyntax(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/good.yaml.j2":   secret("good"),
		"secrets/broken.yaml.j2": "apiVersion: v1\nkind: Secret\nmetadata:\n  name: {{ namespace \n",
	})

	err := NewTemplateSource(root, config.DefaultKinds()).Validate()
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, filepath.Join(root, "secrets", "broken.yaml.j2"), parseErr.Path)

	assert.Error(t, NewTemplateSource(filepath.Join(root, "absent"), nil).Validate())
}

func TestSource_Files(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"secrets/a.yaml":    secret("a"),
		"secrets/b.yaml.j2": secret("b"),
		"root.yml":          secret("root"),
		"notes.txt":         "ignored",
	})

	files, err := NewStaticSource(root, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "root.yml"), filepath.Join(root, "secrets", "a.yaml")}, files)

	files, err = NewTemplateSource(root, nil).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "secrets", "b.yaml.j2")}, files)
}

func TestTemplateSource_Errors(t *testing.T) {
	tests := map[string]string{
		"missing variable": "apiVersion: v1\nkind: Secret\nmetadata:\n  name: {{ .owner }}\n",
		"bad template":     "apiVersion: v1\nkind: Secret\nmetadata:\n  name: {{ namespace \n",
		"bad yaml":         "apiVersion: v1\nkind: Secret\nmetadata: [{{ namespace }}\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := writeFiles(t, map[string]string{"broken.j2": content})
			_, err := NewTemplateSource(root, nil).Generate(Target{Namespace: "ns"})
			assert.True(t, IsParseError(err), "expected ParseError, got %v", err)
		})
	}
}

func TestNew(t *testing.T) {
	static, err := New(Options{Folder: "x", Strategy: config.StrategyStatic})
	require.NoError(t, err)
	assert.IsType(t, &StaticSource{}, static)

	tmpl, err := New(Options{Folder: "x", Strategy: config.StrategyTemplate})
	require.NoError(t, err)
	assert.IsType(t, &TemplateSource{}, tmpl)

	_, err = New(Options{Folder: "x", Strategy: "helm"})
	assert.Error(t, err)
}
