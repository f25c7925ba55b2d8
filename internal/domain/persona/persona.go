// Package persona models a writing-voice profile that campaigns and posts
// reference. Personas are referenced, never owned: removing one leaves the
// campaigns that mention it untouched.
package persona

import (
	"time"

	"social-campaign-backend/internal/domain/shared"
)

// StyleProfile holds statistics inferred from a persona's writing samples.
type StyleProfile struct {
	AvgSentenceLength  float64   `json:"avgSentenceLength" dynamodbav:"avgSentenceLength" validate:"gte=0"`
	VocabularyRichness float64   `json:"vocabularyRichness" dynamodbav:"vocabularyRichness" validate:"gte=0,lte=1"`
	EmojiRate          float64   `json:"emojiRate" dynamodbav:"emojiRate" validate:"gte=0"`
	HashtagRate        float64   `json:"hashtagRate" dynamodbav:"hashtagRate" validate:"gte=0"`
	CommonPhrases      []string  `json:"commonPhrases,omitempty" dynamodbav:"commonPhrases,omitempty" validate:"max=50"`
	AnalyzedAt         time.Time `json:"analyzedAt" dynamodbav:"analyzedAt"`
}

// Persona is the boundary representation of a persona.
type Persona struct {
	shared.Meta
	Name           string        `json:"name" dynamodbav:"name" validate:"required,max=120"`
	Role           string        `json:"role,omitempty" dynamodbav:"role,omitempty" validate:"max=120"`
	Bio            string        `json:"bio,omitempty" dynamodbav:"bio,omitempty" validate:"max=2000"`
	BrandID        string        `json:"brandId,omitempty" dynamodbav:"brandId,omitempty" validate:"omitempty,keysafe"`
	Tone           string        `json:"tone,omitempty" dynamodbav:"tone,omitempty" validate:"max=200"`
	WritingSamples []string      `json:"writingSamples,omitempty" dynamodbav:"writingSamples,omitempty" validate:"max=20,dive,max=5000"`
	StyleProfile   *StyleProfile `json:"styleProfile,omitempty" dynamodbav:"styleProfile,omitempty"`
	// IsActive false means soft deleted.
	IsActive bool `json:"isActive" dynamodbav:"isActive"`
}

// Patch lists the fields an update may change.
type Patch struct {
	Name           *string       `json:"name,omitempty"`
	Role           *string       `json:"role,omitempty"`
	Bio            *string       `json:"bio,omitempty"`
	BrandID        *string       `json:"brandId,omitempty"`
	Tone           *string       `json:"tone,omitempty"`
	WritingSamples *[]string     `json:"writingSamples,omitempty"`
	StyleProfile   *StyleProfile `json:"styleProfile,omitempty"`
}

func (p Patch) Fields() []string {
	set := []struct {
		name string
		ok   bool
	}{
		{"name", p.Name != nil},
		{"role", p.Role != nil},
		{"bio", p.Bio != nil},
		{"brandId", p.BrandID != nil},
		{"tone", p.Tone != nil},
		{"writingSamples", p.WritingSamples != nil},
		{"styleProfile", p.StyleProfile != nil},
	}
	var fields []string
	for _, f := range set {
		if f.ok {
			fields = append(fields, f.name)
		}
	}
	return fields
}

func (p Patch) Apply(persona *Persona) error {
	if p.Name != nil {
		persona.Name = *p.Name
	}
	if p.Role != nil {
		persona.Role = *p.Role
	}
	if p.Bio != nil {
		persona.Bio = *p.Bio
	}
	if p.BrandID != nil {
		persona.BrandID = *p.BrandID
	}
	if p.Tone != nil {
		persona.Tone = *p.Tone
	}
	if p.WritingSamples != nil {
		persona.WritingSamples = append([]string(nil), (*p.WritingSamples)...)
	}
	if p.StyleProfile != nil {
		profile := *p.StyleProfile
		persona.StyleProfile = &profile
	}
	return nil
}
