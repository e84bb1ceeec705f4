package auth

import (
	"testing"

	"github.com/spec-kit/ticket-bot/internal/transport"
)

func TestManagerPolicy(t *testing.T) {
	p := ManagerPolicy{Role: "Ticket Bot Manager", Owner: 1}
	cases := []struct {
		name   string
		member transport.Member
		want   bool
	}{
		{"owner", transport.Member{ID: 1}, true},
		{"manager", transport.Member{ID: 2, Roles: []string{"Ticket Bot Manager"}}, true},
		{"member", transport.Member{ID: 3, Roles: []string{"Member"}}, false},
		{"bot", transport.Member{ID: 4, Bot: true, Roles: []string{"Ticket Bot Manager"}}, false},
	}
	for _, tc := range cases {
		if got := p.CanManage(tc.member); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken("bridge", []string{ScopeGateway})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "bridge" || len(claims.Scopes) != 1 || claims.Scopes[0] != ScopeGateway {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}
