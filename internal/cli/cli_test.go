package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/jyutdb/internal/model"
)

func TestLoadConfig_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  dir: /tmp/out
merge:
  on_collision: fail
watch:
  debounce: 2s
`), 0o644))

	t.Setenv("JYUTDB_WALK_WORKERS", "6")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("JYUTDB")
	v.SetEnvKeyReplacer(stringsReplacer())
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, model.CollisionFail, cfg.Merge.OnCollision)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 6, cfg.Walk.Workers)

	// untouched keys keep their defaults
	def := model.DefaultConfig()
	assert.Equal(t, def.Output.Name, cfg.Output.Name)
	assert.Equal(t, def.Walk.SelfToken, cfg.Walk.SelfToken)
	assert.True(t, cfg.Merge.Validate)
}

func TestDataFlags_Apply(t *testing.T) {
	cfg := model.DefaultConfig()
	flags := dataFlags{dir: "d", manifest: "m.txt", noValidate: true, strict: true}
	flags.apply(cfg)

	assert.Equal(t, "d", cfg.Data.Dir)
	assert.Equal(t, "m.txt", cfg.Data.Manifest)
	assert.False(t, cfg.Merge.Validate)
	assert.Equal(t, model.CollisionFail, cfg.Merge.OnCollision)
}

func TestPartitionPaths_SkipsOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.json"), []byte(`{}`), 0o644))

	cfg := model.DefaultConfig()
	cfg.Data.Dir = dir
	cfg.Output.Dir = dir

	paths, err := partitionPaths(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json")}, paths)

	cfg.Data.Dir = t.TempDir()
	_, err = partitionPaths(cfg, nil)
	assert.Error(t, err)
}

func TestRenderDefaultConfig_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderDefaultConfig(&buf))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	out := buf.String()
	assert.Contains(t, out, "#   walk.self_token: __self__\n")
	assert.Contains(t, out, "#   walk.word_token: __self__\n")
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))
	assert.Error(t, writeDefaultConfig(path))
}

func TestExportCommand(t *testing.T) {
	data := t.TempDir()
	out := t.TempDir()
	partition := `{"name":"p","version":"1","createTime":"","updateTime":"","creators":[],
	"data":{"A":{"unicode":"","characters":["甲"],"controversial":0,"related":[],"pinyin":"",
	"jyutping":"gaap3","bbakLau":"","head":"g","tail":"aap","refBy":[],"meanings":[]}}}`
	require.NoError(t, os.WriteFile(filepath.Join(data, "p.json"), []byte(partition), 0o644))

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"export", "--data", data, "--out", out, "--name", "merged"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, Execute())

	raw, err := os.ReadFile(filepath.Join(out, "merged.json"))
	require.NoError(t, err)
	var doc model.Database
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "merged", doc.Name)
	require.Len(t, doc.Data, 1)
	assert.True(t, doc.Data[0].Entry.Related.IsResolved())
	assert.Contains(t, stdout.String(), "entries:     1")
}
