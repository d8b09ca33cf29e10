package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
)

// classroomDocument is the stored JSON shape of a classroom in the key-value stores
type classroomDocument struct {
	Name        string   `json:"classroom"`
	Description string   `json:"description"`
	ImageRefs   []string `json:"images"`
}

func encodeClassroom(c *domain.Classroom) ([]byte, error) {
	refs := c.ImageRefs
	if refs == nil {
		refs = []string{}
	}
	encoded, err := json.Marshal(classroomDocument{Name: c.Name, Description: c.Description, ImageRefs: refs})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode classroom %q: %w", domain.ErrPersistence, c.Name, err)
	}
	return encoded, nil
}

func decodeClassroom(raw []byte) (*domain.Classroom, error) {
	var doc classroomDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt classroom document: %w", domain.ErrPersistence, err)
	}
	if doc.ImageRefs == nil {
		doc.ImageRefs = []string{}
	}
	return &domain.Classroom{
		Name:        doc.Name,
		Description: doc.Description,
		ImageRefs:   doc.ImageRefs,
	}, nil
}
