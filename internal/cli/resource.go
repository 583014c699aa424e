package cli

import (
	"fmt"
	"strings"
)

// MapResourceTypeToURL maps a resource type string to its URL format
// Handles various aliases for each resource type
func MapResourceTypeToURL(resourceType string) (string, error) {
	switch strings.ToLower(resourceType) {
	case "product", "prod", "products":
		return "products", nil
	case "market", "mkt", "markets":
		return "markets", nil
	case "order", "ord", "orders":
		return "orders", nil
	case "suggestion", "sug", "suggestions":
		return "suggestions", nil
	default:
		return "", fmt.Errorf("unknown resource type: %s", resourceType)
	}
}

// splitResourcePath splits "type/name" and normalises the type.
func splitResourcePath(arg string) (string, string, error) {
	parts := strings.SplitN(arg, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid resource format. Expected <resourceType>/<resourceName>")
	}
	resourceType, err := MapResourceTypeToURL(parts[0])
	if err != nil {
		return "", "", err
	}
	return resourceType, parts[1], nil
}
