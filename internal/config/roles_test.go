package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/declaration"
	"github.com/tradeops/backoffice/internal/domain"
)

func TestParseRoleMapping(t *testing.T) {
	typeDef := uuid.New()
	doc := `
placeholder_type: "TBD"
roles:
  type:
    definition_ids: ["` + typeDef.String() + `"]
  weight:
    name_tokens: ["net weight"]
`

	mapping, err := ParseRoleMapping([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRoleMapping: %v", err)
	}

	if mapping.PlaceholderType != "TBD" {
		t.Errorf("PlaceholderType = %q, want TBD", mapping.PlaceholderType)
	}
	typeRule := mapping.Rules[domain.AttributeRoleType]
	if len(typeRule.DefinitionIDs) != 1 || typeRule.DefinitionIDs[0] != typeDef {
		t.Errorf("type definitions = %v", typeRule.DefinitionIDs)
	}
	if got := mapping.Rules[domain.AttributeRoleWeight].NameTokens; len(got) != 1 || got[0] != "net weight" {
		t.Errorf("weight tokens = %v", got)
	}
	if got := mapping.Rules[domain.AttributeRoleLength].NamePrefixes; len(got) != 1 || got[0] != "uzunluk" {
		t.Errorf("length rule should keep its default, got %v", got)
	}
}

func TestParseRoleMappingErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown role", "roles:\n  colour:\n    name_tokens: [renk]\n"},
		{"bad definition id", "roles:\n  type:\n    definition_ids: [nope]\n"},
		{"malformed yaml", "roles: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRoleMapping([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadRoleMapping(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		mapping, err := LoadRoleMapping("")
		if err != nil {
			t.Fatalf("LoadRoleMapping: %v", err)
		}
		if mapping.PlaceholderType != declaration.PlaceholderType {
			t.Errorf("PlaceholderType = %q", mapping.PlaceholderType)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roles.yaml")
		if err := os.WriteFile(path, []byte("placeholder_type: Bilinmiyor\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		mapping, err := LoadRoleMapping(path)
		if err != nil {
			t.Fatalf("LoadRoleMapping: %v", err)
		}
		if mapping.PlaceholderType != "Bilinmiyor" {
			t.Errorf("PlaceholderType = %q", mapping.PlaceholderType)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadRoleMapping(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestClampBatchSize(t *testing.T) {
	for in, want := range map[int]int{0: 100, -3: 100, 1: 1, 50: 50, 100: 100, 500: 100} {
		if got := ClampBatchSize(in); got != want {
			t.Errorf("ClampBatchSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	opts, err := DeclarationConfig{Locale: "de"}.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions: %v", err)
	}
	if opts.Locale.String() != "de" {
		t.Errorf("Locale = %s, want de", opts.Locale)
	}
	if opts.Roles.PlaceholderType != declaration.PlaceholderType {
		t.Errorf("PlaceholderType = %q", opts.Roles.PlaceholderType)
	}

	if _, err := (DeclarationConfig{Locale: "not a locale!"}).EngineOptions(); err == nil {
		t.Error("expected an error for a malformed locale")
	}
}
