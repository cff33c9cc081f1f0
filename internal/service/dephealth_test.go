package service

import "testing"

func TestJWKSHealthPath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"полный путь", "https://auth.example.com/realms/app/protocol/openid-connect/certs", "/realms/app/protocol/openid-connect/certs"},
		{"без пути", "https://auth.example.com", "/"},
		{"с query", "http://keycloak:8080/certs?x=1", "/certs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jwksHealthPath(tt.url); got != tt.want {
				t.Errorf("jwksHealthPath(%q) = %q, ожидалось %q", tt.url, got, tt.want)
			}
		})
	}
}
