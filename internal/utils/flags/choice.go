package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix      = "<"
	choicePlaceholderSuffix      = ">"
	choiceSeparatorLiteral       = "|"
	choiceUsageTemplate          = "%s %s"
	choiceTypeName               = "choice"
	unsupportedChoiceTemplate    = "unsupported value %q, expected one of %s"
	choiceListSeparatorLiteral   = ", "
	emptyChoiceDefaultIdentifier = ""
)

// ChoiceValue is a pflag.Value restricted to a fixed, case-insensitive set of choices.
type ChoiceValue struct {
	choices  []string
	selected string
}

var _ pflag.Value = (*ChoiceValue)(nil)

// NewChoiceValue constructs a ChoiceValue preset to defaultChoice.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	return &ChoiceValue{choices: normalizeChoices(choices), selected: normalizeChoice(defaultChoice)}
}

// String returns the selected choice.
func (value *ChoiceValue) String() string {
	if value == nil {
		return emptyChoiceDefaultIdentifier
	}
	return value.selected
}

// Set validates and stores candidate.
func (value *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := normalizeChoice(candidate)
	for _, choice := range value.choices {
		if choice == normalizedCandidate {
			value.selected = normalizedCandidate
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceTemplate, candidate, strings.Join(value.choices, choiceListSeparatorLiteral))
}

// Type names the flag value kind in help output.
func (value *ChoiceValue) Type() string {
	return choiceTypeName
}

// Usage renders description prefixed by the choices, with the current default capitalized.
func (value *ChoiceValue) Usage(description string) string {
	highlightedChoices := make([]string, 0, len(value.choices))
	for _, choice := range value.choices {
		if choice == value.selected {
			highlightedChoices = append(highlightedChoices, strings.ToUpper(choice))
			continue
		}
		highlightedChoices = append(highlightedChoices, choice)
	}
	placeholder := choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return placeholder
	}
	return fmt.Sprintf(choiceUsageTemplate, placeholder, description)
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := normalizeChoice(choice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		normalized = append(normalized, normalizedChoice)
	}
	return normalized
}

func normalizeChoice(choice string) string {
	return strings.ToLower(strings.TrimSpace(choice))
}
