package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aws/jsii-runtime-go"
)

// WriteToTempDir writes files (relative path → content) into a new
// directory under the OS temp dir and returns its path. Constructs such as
// awss3deployment.Source_Asset copy the directory into the CDK staging area,
// so content generated during synthesis can be shipped as an asset.
func WriteToTempDir(pattern string, files map[string][]byte) *string {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		panic(fmt.Sprintf("failed to create temporary asset dir: %v", err))
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, filepath.Clean(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			panic(fmt.Sprintf("failed to create directory for %s: %v", path, err))
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			panic(fmt.Sprintf("failed to write temporary asset file %s: %v", path, err))
		}
	}

	return jsii.String(dir)
}
