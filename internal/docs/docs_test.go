package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestDocumentCoversRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("failed to render document: %v", err)
	}

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	if doc.BasePath != "/api/v1" {
		t.Errorf("expected base path /api/v1, got %q", doc.BasePath)
	}
	for _, path := range []string{
		"/auth/register", "/auth/login",
		"/profile", "/profile/preferences", "/profile/push-token",
		"/transactions", "/transactions/summary", "/transactions/categories", "/transactions/{id}",
		"/budgets", "/budgets/summary", "/budgets/notifications", "/budgets/{id}", "/budgets/{id}/status",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("document is missing %s", path)
		}
	}
}
