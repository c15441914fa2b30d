package secret

import (
	"errors"
	"strings"
	"testing"

	"github.com/fernet/fernet-go"
)

func TestBox_SealOpen(t *testing.T) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		secret string
	}{
		{"fernet key", k.Encode()},
		{"passphrase", "correct horse battery staple"},
		{"ephemeral", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, err := NewBox(tt.secret)
			if err != nil {
				t.Fatalf("NewBox() error = %v", err)
			}

			token, err := box.Seal("AIza-test-key")
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if strings.Contains(token, "AIza") {
				t.Error("token contains plaintext")
			}

			got, err := box.Open(token)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if got != "AIza-test-key" {
				t.Errorf("Open() = %q", got)
			}
		})
	}
}

func TestBox_SameSecretSameKey(t *testing.T) {
	a, _ := NewBox("household")
	b, _ := NewBox("household")

	token, err := a.Seal("value")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := b.Open(token); err != nil || got != "value" {
		t.Errorf("Open() = %q, %v", got, err)
	}
}

func TestBox_WrongKey(t *testing.T) {
	a, _ := NewBox("one")
	b, _ := NewBox("two")

	token, _ := a.Seal("value")
	if _, err := b.Open(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Open() error = %v, want ErrInvalidToken", err)
	}
	if _, err := a.Open("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Open(garbage) error = %v, want ErrInvalidToken", err)
	}
}
