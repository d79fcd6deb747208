package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaterialKind string

const (
	MaterialProduct  MaterialKind = "product"
	MaterialFreeText MaterialKind = "free_text"
)

// MaterialLine is either a ProductMaterial or a FreeTextMaterial.
type MaterialLine interface {
	Kind() MaterialKind
	Record() MaterialRecord
}

// ProductMaterial references a catalog product taken from a location.
type ProductMaterial struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	LocationID uuid.UUID       `json:"location_id"`
}

func (ProductMaterial) Kind() MaterialKind { return MaterialProduct }

func (m ProductMaterial) Record() MaterialRecord {
	productID, locationID := m.ProductID, m.LocationID
	return MaterialRecord{
		Type:       MaterialProduct,
		ProductID:  &productID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		Unit:       m.Unit,
		LocationID: &locationID,
	}
}

// FreeTextMaterial is material that is not in the catalog.
type FreeTextMaterial struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

func (FreeTextMaterial) Kind() MaterialKind { return MaterialFreeText }

func (m FreeTextMaterial) Record() MaterialRecord {
	return MaterialRecord{
		Type:        MaterialFreeText,
		Description: m.Description,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
	}
}

// MaterialRecord is the persisted, flattened form of a MaterialLine as
// embedded in a time registration.
type MaterialRecord struct {
	Type        MaterialKind    `json:"type"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	LocationID  *uuid.UUID      `json:"location_id,omitempty"`
}

// Line converts the record back into its variant.
func (r MaterialRecord) Line() (MaterialLine, error) {
	switch r.Type {
	case MaterialProduct:
		m := ProductMaterial{Name: r.Name, Quantity: r.Quantity, Unit: r.Unit}
		if r.ProductID != nil {
			m.ProductID = *r.ProductID
		}
		if r.LocationID != nil {
			m.LocationID = *r.LocationID
		}
		return m, nil
	case MaterialFreeText:
		return FreeTextMaterial{Description: r.Description, Quantity: r.Quantity, Unit: r.Unit}, nil
	}
	return nil, fmt.Errorf("unknown material type %q", r.Type)
}

// MaterialLines decodes the `type` discriminator into the matching variant.
type MaterialLines []MaterialLine

func (ml MaterialLines) MarshalJSON() ([]byte, error) {
	records := make([]MaterialRecord, len(ml))
	for i, m := range ml {
		records[i] = m.Record()
	}
	return json.Marshal(records)
}

func (ml *MaterialLines) UnmarshalJSON(data []byte) error {
	var records []MaterialRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	lines := make(MaterialLines, 0, len(records))
	for i, r := range records {
		line, err := r.Line()
		if err != nil {
			return fmt.Errorf("materials[%d]: %w", i, err)
		}
		lines = append(lines, line)
	}
	*ml = lines
	return nil
}

// Records flattens the lines for storage.
func (ml MaterialLines) Records() []MaterialRecord {
	records := make([]MaterialRecord, len(ml))
	for i, m := range ml {
		records[i] = m.Record()
	}
	return records
}
