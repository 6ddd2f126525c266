package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchema string

// SchemaValidationError reports a profile file that parsed but does not
// satisfy the embedded profile schema.
type SchemaValidationError struct {
	Path   string
	Issues []string
}

func (e *SchemaValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "profile %s failed schema validation:\n", e.Path)
	for i, issue := range e.Issues {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, issue)
	}
	return sb.String()
}

// Load reads a profile JSON file, validates it against the embedded schema,
// and decodes it into the typed Profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse validates and decodes raw profile JSON. The path is used only for
// error reporting.
func Parse(data []byte, path string) (*Profile, error) {
	schemaLoader := gojsonschema.NewStringLoader(profileSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate profile %s: %w", path, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, &SchemaValidationError{Path: path, Issues: issues}
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &profile, nil
}
