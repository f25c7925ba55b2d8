// Package asset models metadata for a file owned by a brand. The bytes live
// in the object store under ObjectKey.
package asset

import (
	"strings"

	"social-campaign-backend/internal/domain/shared"
)

type Category string

const (
	CategoryLogo     Category = "logo"
	CategoryImage    Category = "image"
	CategoryFont     Category = "font"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// CategoryFor picks a category from a MIME type when the caller gave none.
func CategoryFor(contentType string) Category {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoryImage
	case strings.HasPrefix(contentType, "font/"):
		return CategoryFont
	case contentType == "application/pdf", strings.HasPrefix(contentType, "text/"):
		return CategoryDocument
	}
	return CategoryOther
}

// Asset is the boundary representation of a brand asset.
type Asset struct {
	shared.Meta
	BrandID     string   `json:"brandId" dynamodbav:"brandId" validate:"required,keysafe"`
	FileName    string   `json:"fileName" dynamodbav:"fileName" validate:"required,max=255"`
	ContentType string   `json:"contentType" dynamodbav:"contentType" validate:"required,max=120"`
	Size        int64    `json:"size" dynamodbav:"size" validate:"gte=0"`
	ObjectKey   string   `json:"objectKey" dynamodbav:"objectKey" validate:"required"`
	Category    Category `json:"category" dynamodbav:"category" validate:"required,oneof=logo image font document other"`
	Tags        []string `json:"tags,omitempty" dynamodbav:"tags,omitempty" validate:"max=20,dive,max=50"`
}

// ObjectKeyFor is where an asset's bytes are stored. The tenant prefix keeps
// tenants apart in the bucket as well as in the table.
func ObjectKeyFor(tenantID, brandID, assetID, fileName string) string {
	return strings.Join([]string{tenantID, "brands", brandID, "assets", assetID, fileName}, "/")
}

// Patch lists the fields an update may change. The file itself is immutable;
// replacing it means uploading a new asset.
type Patch struct {
	FileName *string   `json:"fileName,omitempty"`
	Category *Category `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

func (p Patch) Fields() []string {
	var fields []string
	if p.FileName != nil {
		fields = append(fields, "fileName")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	return fields
}

func (p Patch) Apply(a *Asset) error {
	if p.FileName != nil {
		a.FileName = *p.FileName
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Tags != nil {
		a.Tags = append([]string(nil), (*p.Tags)...)
	}
	return nil
}
