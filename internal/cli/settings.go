package cli

import (
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/jyutdb/internal/loader"
	"github.com/ppiankov/jyutdb/internal/model"
)

// loadConfig layers the config file and JYUTDB_* environment over the defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	registerDefaults(v, "", reflect.ValueOf(cfg).Elem())
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// registerDefaults tells viper about every key so AutomaticEnv can override
// keys that the config file does not mention.
func registerDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		f := val.Field(i)
		if f.Kind() == reflect.Struct {
			registerDefaults(v, key, f)
			continue
		}
		v.SetDefault(key, f.Interface())
	}
}

// dataFlags are the input selection flags shared by every command that loads partitions
type dataFlags struct {
	dir        string
	manifest   string
	noValidate bool
	strict     bool
}

func (d *dataFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&d.dir, "data", "", "partition directory, scanned recursively for *.json (default from config)")
	fs.StringVar(&d.manifest, "manifest", "", "file listing partition paths in merge order")
	fs.BoolVar(&d.noValidate, "no-validate", false, "skip structural validation of partitions")
	fs.BoolVar(&d.strict, "strict-collisions", false, "fail when two partitions define the same identifier")
}

func (d *dataFlags) apply(cfg *model.Config) {
	if d.dir != "" {
		cfg.Data.Dir = d.dir
	}
	if d.manifest != "" {
		cfg.Data.Manifest = d.manifest
	}
	if d.noValidate {
		cfg.Merge.Validate = false
	}
	if d.strict {
		cfg.Merge.OnCollision = model.CollisionFail
	}
}

// partitionPaths resolves the partitions to merge; the output file is never an input
func partitionPaths(cfg *model.Config, args []string) ([]string, error) {
	out := filepath.Join(cfg.Output.Dir, cfg.Output.Name+".json")
	paths, err := loader.Paths(cfg.Data, args, out)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", loader.ErrNoPartitions, cfg.Data.Dir)
	}
	return paths, nil
}
