package domain

const (
	MaxMetadataNameLength        = 200
	MaxMetadataDescriptionLength = 1000
	MaxMetadataImageLength       = 500
	MaxTraits                    = 20
	MaxTraitFieldLength          = 100
)

type Trait struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Metadata is the optional descriptive record attached to an asset at mint
// time. It carries no settlement semantics.
type Metadata struct {
	AssetID     AssetID `json:"asset_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Traits      []Trait `json:"traits,omitempty"`
}

func (m Metadata) Validate() error {
	if m.Name == "" || len(m.Name) > MaxMetadataNameLength {
		return ErrInvalidMetadata
	}
	if m.Description == "" || len(m.Description) > MaxMetadataDescriptionLength {
		return ErrInvalidMetadata
	}
	if m.Image == "" || len(m.Image) > MaxMetadataImageLength {
		return ErrInvalidMetadata
	}
	if len(m.Traits) > MaxTraits {
		return ErrInvalidMetadata
	}
	for _, trait := range m.Traits {
		if trait.Name == "" || len(trait.Name) > MaxTraitFieldLength {
			return ErrInvalidMetadata
		}
		if trait.Value == "" || len(trait.Value) > MaxTraitFieldLength {
			return ErrInvalidMetadata
		}
	}
	return nil
}
