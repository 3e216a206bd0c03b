package output

import (
	"encoding/json"
	"os"
)

// SaveJSON writes rows as an indented JSON array to filepath.
func SaveJSON(rows []Row, filepath string) error {
	if rows == nil {
		rows = []Row{}
	}
	content, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
