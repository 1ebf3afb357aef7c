package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ProjectName returns the "name" from package.json in root, falling back
// to the directory name.
func ProjectName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}
	return filepath.Base(root)
}
