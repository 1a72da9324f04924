package brand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrBlankName = errors.New("brand name must not be blank")

// Brand is a drink manufacturer shown next to products in the catalog.
type Brand struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func New(name, description string) (*Brand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}

	return &Brand{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}, nil
}

// UpdateInfo renames the brand. Blank names are rejected.
func (b *Brand) UpdateInfo(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", ErrBlankName, name)
	}

	b.Name = name
	b.Description = description

	return nil
}
