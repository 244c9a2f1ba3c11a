package provision

import (
	"encoding/json"
	"fmt"
)

// nodeConfigurationData builds the per-node DSC ConfigurationData document.
// PSDscAllowPlainTextPassword is set because compiled configurations for this
// tooling carry credentials inside the automation account's trust boundary.
func nodeConfigurationData(node string) (string, error) {
	doc := map[string]any{
		"AllNodes": []map[string]any{
			{
				"NodeName":                    node,
				"PSDscAllowPlainTextPassword": true,
			},
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode configuration data for %s: %w", node, err)
	}
	return string(b), nil
}
