package enums

import "fmt"

// LandingTemplate is the visual layout of a landing page. Classic and modern
// ship on every plan; the rest require premium or enterprise.
type LandingTemplate string

const (
	LandingTemplateClassic    LandingTemplate = "classic"
	LandingTemplateModern     LandingTemplate = "modern"
	LandingTemplateCorporate  LandingTemplate = "corporate"
	LandingTemplateMinimal    LandingTemplate = "minimal"
	LandingTemplateTech       LandingTemplate = "tech"
	LandingTemplateAutomotive LandingTemplate = "automotive"
	LandingTemplateMotorcycle LandingTemplate = "motorcycle"
)

var validLandingTemplates = []LandingTemplate{
	LandingTemplateClassic,
	LandingTemplateModern,
	LandingTemplateCorporate,
	LandingTemplateMinimal,
	LandingTemplateTech,
	LandingTemplateAutomotive,
	LandingTemplateMotorcycle,
}

// String implements fmt.Stringer.
func (l LandingTemplate) String() string {
	return string(l)
}

// IsValid reports whether the value is known.
func (l LandingTemplate) IsValid() bool {
	for _, candidate := range validLandingTemplates {
		if candidate == l {
			return true
		}
	}
	return false
}

// RequiresPremium reports whether the template is gated behind the premium
// and enterprise tiers.
func (l LandingTemplate) RequiresPremium() bool {
	return l != LandingTemplateClassic && l != LandingTemplateModern
}

// ParseLandingTemplate converts raw input into a LandingTemplate.
func ParseLandingTemplate(value string) (LandingTemplate, error) {
	for _, candidate := range validLandingTemplates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid landing template %q", value)
}
