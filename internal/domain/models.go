// Package domain defines the core models of the cellar application: wine
// records, their writable field sets, chat turns exchanged with the
// sommelier assistant, and the identity profile that scopes every store
// operation.
//
// Wine rows are mapped with GORM for the SQL driver; the document-store
// driver maps them through its own document type in package store.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidField is wrapped by every validation failure in this package.
var ErrInvalidField = errors.New("invalid wine field")

// Wine is one line item in a user's cellar.
//
// Fields:
//   - ID: opaque identifier assigned by the store on creation; never reused.
//   - UserID: owner of the record; never serialized to clients.
//   - Vintage: free text ("2018", "NV", "circa 1990").
//   - Quantity: bottle count, always >= 0.
//   - Valuation: estimated value per bottle, 0 when unknown.
//   - AddedAt: creation time in milliseconds since epoch, immutable.
type Wine struct {
	ID        string   `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID    string   `json:"-"               gorm:"type:varchar(128);not null;index:idx_user_wines,priority:1"`
	Name      string   `json:"name"            gorm:"type:varchar(255);not null"`
	Producer  string   `json:"producer"        gorm:"type:varchar(255);not null"`
	Varietal  string   `json:"varietal"        gorm:"type:varchar(255)"`
	Vintage   string   `json:"vintage"         gorm:"type:varchar(64)"`
	Region    string   `json:"region"          gorm:"type:varchar(255)"`
	Type      WineType `json:"type"            gorm:"type:varchar(16);not null"`
	Quantity  int      `json:"quantity"        gorm:"not null;default:0;check:quantity >= 0"`
	Valuation float64  `json:"valuation"       gorm:"not null;default:0"`
	Notes     string   `json:"notes,omitempty" gorm:"type:text"`
	AddedAt   int64    `json:"addedAt"         gorm:"not null;index:idx_user_wines,priority:2"`
}

// TableName returns the database table name for Wine.
func (Wine) TableName() string { return "wines" }

// Fields returns the writable subset of w.
func (w Wine) Fields() WineFields {
	return WineFields{
		Name:      w.Name,
		Producer:  w.Producer,
		Varietal:  w.Varietal,
		Vintage:   w.Vintage,
		Region:    w.Region,
		Type:      w.Type,
		Quantity:  w.Quantity,
		Valuation: w.Valuation,
		Notes:     w.Notes,
	}
}

// WineFields is the set of attributes a user submits when registering a
// wine. Identifier, owner and creation time are assigned by the store.
type WineFields struct {
	Name      string   `json:"name"      example:"Cuvée Y"`
	Producer  string   `json:"producer"  example:"Domaine X"`
	Varietal  string   `json:"varietal"  example:"Pinot Noir"`
	Vintage   string   `json:"vintage"   example:"2018"`
	Region    string   `json:"region"    example:"Burgundy"`
	Type      WineType `json:"type"      example:"Red"`
	Quantity  int      `json:"quantity"  example:"2"`
	Valuation float64  `json:"valuation" example:"45"`
	Notes     string   `json:"notes,omitempty"`
}

// Normalize trims text fields and canonicalizes the wine type spelling.
func (f WineFields) Normalize() WineFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Producer = strings.TrimSpace(f.Producer)
	f.Varietal = strings.TrimSpace(f.Varietal)
	f.Vintage = strings.TrimSpace(f.Vintage)
	f.Region = strings.TrimSpace(f.Region)
	f.Notes = strings.TrimSpace(f.Notes)
	if t, ok := ParseWineType(string(f.Type)); ok {
		f.Type = t
	}
	return f
}

// Validate reports the first constraint violated by f.
func (f WineFields) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidField)
	}
	if f.Producer == "" {
		return fmt.Errorf("%w: producer is required", ErrInvalidField)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: type must be one of %s", ErrInvalidField, typeList())
	}
	if f.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be >= 0", ErrInvalidField)
	}
	if f.Valuation < 0 {
		return fmt.Errorf("%w: valuation must be >= 0", ErrInvalidField)
	}
	return nil
}

// NewWine builds an unsaved record owned by userID from f.
func NewWine(userID string, f WineFields, addedAt int64) Wine {
	return Wine{
		UserID:    userID,
		Name:      f.Name,
		Producer:  f.Producer,
		Varietal:  f.Varietal,
		Vintage:   f.Vintage,
		Region:    f.Region,
		Type:      f.Type,
		Quantity:  f.Quantity,
		Valuation: f.Valuation,
		Notes:     f.Notes,
		AddedAt:   addedAt,
	}
}

// WinePatch is a partial update. Nil fields are left untouched; there is no
// way to address the identifier, owner or creation time.
type WinePatch struct {
	Name      *string   `json:"name,omitempty"`
	Producer  *string   `json:"producer,omitempty"`
	Varietal  *string   `json:"varietal,omitempty"`
	Vintage   *string   `json:"vintage,omitempty"`
	Region    *string   `json:"region,omitempty"`
	Type      *WineType `json:"type,omitempty"`
	Quantity  *int      `json:"quantity,omitempty"`
	Valuation *float64  `json:"valuation,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

// QuantityPatch returns a patch that only sets the bottle count.
func QuantityPatch(q int) WinePatch { return WinePatch{Quantity: &q} }

// FieldsPatch returns a patch that overwrites every writable attribute,
// which is what an edit-form submission does.
func FieldsPatch(f WineFields) WinePatch {
	return WinePatch{
		Name:      &f.Name,
		Producer:  &f.Producer,
		Varietal:  &f.Varietal,
		Vintage:   &f.Vintage,
		Region:    &f.Region,
		Type:      &f.Type,
		Quantity:  &f.Quantity,
		Valuation: &f.Valuation,
		Notes:     &f.Notes,
	}
}

// IsEmpty reports whether the patch would change nothing.
func (p WinePatch) IsEmpty() bool {
	return p.Name == nil && p.Producer == nil && p.Varietal == nil &&
		p.Vintage == nil && p.Region == nil && p.Type == nil &&
		p.Quantity == nil && p.Valuation == nil && p.Notes == nil
}

// Apply merges p into w.
func (p WinePatch) Apply(w *Wine) {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Producer != nil {
		w.Producer = *p.Producer
	}
	if p.Varietal != nil {
		w.Varietal = *p.Varietal
	}
	if p.Vintage != nil {
		w.Vintage = *p.Vintage
	}
	if p.Region != nil {
		w.Region = *p.Region
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Quantity != nil {
		w.Quantity = *p.Quantity
	}
	if p.Valuation != nil {
		w.Valuation = *p.Valuation
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
}

// Normalize trims text values and canonicalizes the wine type.
func (p WinePatch) Normalize() WinePatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Name = trim(p.Name)
	p.Producer = trim(p.Producer)
	p.Varietal = trim(p.Varietal)
	p.Vintage = trim(p.Vintage)
	p.Region = trim(p.Region)
	p.Notes = trim(p.Notes)
	if p.Type != nil {
		if t, ok := ParseWineType(string(*p.Type)); ok {
			p.Type = &t
		}
	}
	return p
}

// Validate checks the fields that are present.
func (p WinePatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidField)
	}
	if p.Producer != nil && *p.Producer == "" {
		return fmt.Errorf("%w: producer must not be empty", ErrInvalidField)
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: type must be one of %s", ErrInvalidField, typeList())
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be >= 0", ErrInvalidField)
	}
	if p.Valuation != nil && *p.Valuation < 0 {
		return fmt.Errorf("%w: valuation must be >= 0", ErrInvalidField)
	}
	return nil
}

// Profile is the identity resolved once per session from the login bridge.
// UserID is the scoping key for every store operation.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// CellarSummary holds the dashboard aggregates for one cellar.
type CellarSummary struct {
	TotalBottles   int            `json:"totalBottles"`
	TotalValue     float64        `json:"totalValue"`
	DistinctLabels int            `json:"distinctLabels"`
	ByType         map[string]int `json:"byType"`
	TopVarietals   []VarietalStat `json:"topVarietals"`
}

// VarietalStat is the bottle count for one varietal.
type VarietalStat struct {
	Varietal string `json:"varietal"`
	Bottles  int    `json:"bottles"`
}
