package openapi

import "testing"

func TestLoad(t *testing.T) {
	doc, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	paths := []string{
		"/shared/{shareId}",
		"/shared/{shareId}/comments",
		"/api/v1/projects/{projectId}/share-links",
		"/api/v1/projects/{projectId}/report",
		"/api/v1/share-links/{shareId}",
		"/api/v1/share-links/{shareId}/comments",
	}
	for _, p := range paths {
		if doc.Paths.Find(p) == nil {
			t.Errorf("путь %s отсутствует в спецификации", p)
		}
	}
}
