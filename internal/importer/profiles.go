package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk shape of a user-defined profile pack. Users who
// bank somewhere without a built-in layout can describe the export once and
// reuse it by name.
type profileFile struct {
	Profiles []profileEntry `yaml:"profiles"`
}

type profileEntry struct {
	Name              string `yaml:"name"`
	DateColumn        int    `yaml:"date_column"`
	DescriptionColumn int    `yaml:"description_column"`
	AmountColumn      *int   `yaml:"amount_column"`
	DebitColumn       *int   `yaml:"debit_column"`
	CreditColumn      *int   `yaml:"credit_column"`
	DateFormat        string `yaml:"date_format"`
	HasHeader         *bool  `yaml:"has_header"`
	SkipRows          int    `yaml:"skip_rows"`
	NegateAmounts     bool   `yaml:"negate_amounts"`
	IsCreditAccount   bool   `yaml:"is_credit_account"`
}

// LoadProfiles reads a profile pack from path. A missing file is not an
// error, it just means no custom profiles are defined.
func LoadProfiles(path string) ([]*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes and validates profile pack YAML.
func ParseProfiles(data []byte) ([]*Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	profiles := make([]*Profile, 0, len(file.Profiles))
	for i, entry := range file.Profiles {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("profile %d: name is required", i+1)
		}
		format := entry.DateFormat
		if format == "" {
			format = "%m/%d/%Y"
		}
		if _, ok := DateLayout(format); !ok {
			return nil, fmt.Errorf("profile %q: unsupported date format %q", entry.Name, format)
		}
		if entry.DateColumn < 0 || entry.DescriptionColumn < 0 || entry.SkipRows < 0 {
			return nil, fmt.Errorf("profile %q: column and skip indexes must not be negative", entry.Name)
		}
		for _, c := range []*int{entry.AmountColumn, entry.DebitColumn, entry.CreditColumn} {
			if c != nil && *c < 0 {
				return nil, fmt.Errorf("profile %q: column and skip indexes must not be negative", entry.Name)
			}
		}
		if entry.AmountColumn == nil && entry.DebitColumn == nil && entry.CreditColumn == nil {
			return nil, fmt.Errorf("profile %q: an amount column or debit/credit columns are required", entry.Name)
		}

		hasHeader := true
		if entry.HasHeader != nil {
			hasHeader = *entry.HasHeader
		}
		profiles = append(profiles, &Profile{
			Name:              entry.Name,
			DateColumn:        entry.DateColumn,
			DescriptionColumn: entry.DescriptionColumn,
			AmountColumn:      entry.AmountColumn,
			DebitColumn:       entry.DebitColumn,
			CreditColumn:      entry.CreditColumn,
			DateFormat:        format,
			HasHeader:         hasHeader,
			SkipRows:          entry.SkipRows,
			NegateAmounts:     entry.NegateAmounts,
			IsCreditAccount:   entry.IsCreditAccount,
		})
	}
	return profiles, nil
}

// FindProfile returns the profile whose name matches, ignoring case, or nil.
func FindProfile(profiles []*Profile, name string) *Profile {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}
