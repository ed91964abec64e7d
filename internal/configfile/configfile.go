// Package configfile loads an optional "*.ckv.toml" override file and
// flattens it into the dotted-path map[string]string the engine's
// descriptor tables already understand. It is explicitly not part of the
// engine's core grammar (spec §6 "Persisted form: none intrinsic") — an
// ambient convenience the way the teacher's internal/parser/toml bridges
// an external format into core.Database.
package configfile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"ckv/internal/ckverrors"
)

// Load reads path and flattens it into a map[string]string ready for
// Configurable.ConfigureFromMap: a nested table `[rate_limiter]` with key
// `rate_bytes_per_sec = 100` becomes `"rate_limiter.rate_bytes_per_sec"`.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ckverrors.IOErrorf(err, "configfile: read %q", path)
	}
	return Parse(string(data))
}

// Parse flattens raw TOML text the same way Load does, for callers that
// already have the document in memory (tests, embedded defaults).
func Parse(raw string) (map[string]string, error) {
	var doc map[string]interface{}
	if _, err := toml.Decode(raw, &doc); err != nil {
		return nil, ckverrors.InvalidArg("configfile: %v", err)
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

// flatten walks v depth-first, writing one map[string]string entry per
// scalar leaf under the dotted path built from prefix. Table keys are
// visited in sorted order so repeated Parse calls over the same document
// always flatten identically.
func flatten(prefix string, v interface{}, out map[string]string) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(joinPath(prefix, k), val[k], out)
		}
	case []interface{}:
		elems := make([]string, len(val))
		for i, e := range val {
			elems[i] = scalarString(e)
		}
		out[prefix] = strings.Join(elems, ":")
	default:
		out[prefix] = scalarString(v)
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
