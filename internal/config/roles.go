package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/tradeops/backoffice/internal/declaration"
	"github.com/tradeops/backoffice/internal/domain"
)

type roleRuleFile struct {
	DefinitionIDs []string `yaml:"definition_ids"`
	NameTokens    []string `yaml:"name_tokens"`
	NamePrefixes  []string `yaml:"name_prefixes"`
}

type rolesFile struct {
	PlaceholderType string                  `yaml:"placeholder_type"`
	Roles           map[string]roleRuleFile `yaml:"roles"`
}

// LoadRoleMapping reads the attribute role mapping. An empty path yields the
// name-based defaults; roles missing from the file keep their defaults.
func LoadRoleMapping(path string) (declaration.RoleMapping, error) {
	mapping := declaration.DefaultRoleMapping()
	if path == "" {
		return mapping, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mapping, fmt.Errorf("failed to read attribute roles file: %w", err)
	}
	return ParseRoleMapping(data)
}

// ParseRoleMapping decodes a YAML attribute role mapping
func ParseRoleMapping(data []byte) (declaration.RoleMapping, error) {
	mapping := declaration.DefaultRoleMapping()

	var file rolesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return mapping, fmt.Errorf("failed to parse attribute roles: %w", err)
	}

	if file.PlaceholderType != "" {
		mapping.PlaceholderType = file.PlaceholderType
	}

	for name, raw := range file.Roles {
		role := domain.AttributeRole(name)
		if !role.IsValid() {
			return mapping, fmt.Errorf("unknown attribute role %q, expected one of %v", name, domain.AttributeRoles())
		}

		rule := mapping.Rules[role]
		if len(raw.DefinitionIDs) > 0 {
			rule.DefinitionIDs = make([]uuid.UUID, 0, len(raw.DefinitionIDs))
			for _, s := range raw.DefinitionIDs {
				id, err := uuid.Parse(s)
				if err != nil {
					return mapping, fmt.Errorf("role %s: invalid definition id %q: %w", name, s, err)
				}
				rule.DefinitionIDs = append(rule.DefinitionIDs, id)
			}
		}
		if len(raw.NameTokens) > 0 {
			rule.NameTokens = raw.NameTokens
		}
		if len(raw.NamePrefixes) > 0 {
			rule.NamePrefixes = raw.NamePrefixes
		}
		mapping.Rules[role] = rule
	}

	return mapping, nil
}

// EngineOptions builds the reconciliation options: role mapping from
// AttributeRolesFile and row collation from Locale.
func (c DeclarationConfig) EngineOptions() (declaration.Options, error) {
	opts := declaration.DefaultOptions()

	roles, err := LoadRoleMapping(c.AttributeRolesFile)
	if err != nil {
		return opts, err
	}
	opts.Roles = roles

	if c.Locale != "" {
		tag, err := language.Parse(c.Locale)
		if err != nil {
			return opts, fmt.Errorf("invalid DECLARATION_LOCALE %q: %w", c.Locale, err)
		}
		opts.Locale = tag
	}

	return opts, nil
}
