package models

import (
	"regexp"
	"time"
)

// Interview is one generated question set, stored in the interviews
// collection. Created once by question generation, never updated.
type Interview struct {
	ID         string    `bson:"_id" json:"id"`
	Role       string    `bson:"role" json:"role"`
	Type       string    `bson:"type" json:"type"`
	Level      string    `bson:"level" json:"level"`
	TechStack  []string  `bson:"techstack" json:"techstack"`
	Questions  []string  `bson:"questions" json:"questions"`
	UserID     string    `bson:"user_id" json:"userId"`
	Finalized  bool      `bson:"finalized" json:"finalized"`
	CoverImage string    `bson:"cover_image" json:"coverImage"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

var mixedType = regexp.MustCompile(`(?i)mix`)

// DisplayType normalizes any "mix"-flavored type label to "Mixed".
// Cosmetic only; the stored type is untouched.
func (i Interview) DisplayType() string {
	if mixedType.MatchString(i.Type) {
		return "Mixed"
	}
	return i.Type
}
