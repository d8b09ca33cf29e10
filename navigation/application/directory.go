package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dfryer1193/campusnav/api"
	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/rs/zerolog/log"
)

// Directory joins classrooms with the images they reference.
//
// A Directory starts uninitialized and rejects reads with domain.ErrNotInitialized
// until Initialize succeeds once. Initialize may be called again at any time to
// replace both stores. Directory is not safe for concurrent use; see DirectoryService.
type Directory struct {
	classrooms domain.ClassroomRepository
	images     domain.ImageRepository
	store      domain.Store

	ready bool
}

func NewDirectory(classrooms domain.ClassroomRepository, images domain.ImageRepository, store domain.Store) *Directory {
	return &Directory{
		classrooms: classrooms,
		images:     images,
		store:      store,
	}
}

// Initialize parses both payloads and replaces the contents of both stores.
//
// Images are written before classrooms, and both writes share one store
// transaction: a failure part way leaves the previous contents of both stores
// in place, and a Directory that was already ready stays ready.
func (d *Directory) Initialize(ctx context.Context, classroomPayload, imagePayload string) error {
	classrooms, err := ParseClassrooms(classroomPayload)
	if err != nil {
		return err
	}

	imgs, err := ParseImages(imagePayload)
	if err != nil {
		return err
	}

	if err := d.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}

	err = d.store.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := d.images.ReplaceAll(txCtx, imgs); err != nil {
			return fmt.Errorf("failed to replace images: %w", err)
		}
		if err := d.classrooms.ReplaceAll(txCtx, classrooms); err != nil {
			return fmt.Errorf("failed to replace classrooms: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		return err
	}

	d.ready = true
	log.Info().Int("classrooms", len(classrooms)).Int("images", len(imgs)).Msg("Navigation data loaded")
	return nil
}

// Ready reports whether Initialize has succeeded at least once
func (d *Directory) Ready() bool {
	return d.ready
}

// Ping probes the underlying store
func (d *Directory) Ping(ctx context.Context) error {
	if err := d.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}
	return nil
}

// ListClassrooms returns the name of every classroom in store order
func (d *Directory) ListClassrooms(ctx context.Context) ([]string, error) {
	if !d.ready {
		return nil, domain.ErrNotInitialized
	}

	classrooms, err := d.classrooms.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(classrooms))
	for _, c := range classrooms {
		names = append(names, c.Name)
	}
	return names, nil
}

// GetClassroom returns the classroom called name with its image references
// replaced by image payloads, in reference order.
//
// References that name no stored image are dropped. If the classroom references
// images and none of them resolve, the result is a NotFoundError for images.
func (d *Directory) GetClassroom(ctx context.Context, name string) (*domain.ResolvedClassroom, error) {
	if !d.ready {
		return nil, domain.ErrNotInitialized
	}

	classrooms, err := d.classrooms.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var match *domain.Classroom
	for _, c := range classrooms {
		if c.Name == name {
			match = c
			break
		}
	}
	if match == nil {
		return nil, &domain.NotFoundError{Subject: domain.SubjectClassroom}
	}

	imgs, err := d.images.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	payloads := make(map[string]string, len(imgs))
	for _, img := range imgs {
		payloads[img.Name] = img.Payload
	}

	resolved := make([]string, 0, len(match.ImageRefs))
	for _, ref := range match.ImageRefs {
		if payload, ok := payloads[ref]; ok {
			resolved = append(resolved, payload)
		}
	}

	if len(match.ImageRefs) > 0 && len(resolved) == 0 {
		return nil, &domain.NotFoundError{Subject: domain.SubjectImages}
	}
	if missing := len(match.ImageRefs) - len(resolved); missing > 0 {
		log.Warn().Str("classroom", name).Int("missing", missing).Msg("Some referenced images are not stored")
	}

	return &domain.ResolvedClassroom{
		Name:        match.Name,
		Description: match.Description,
		Images:      resolved,
	}, nil
}

// ClassroomListJSON returns ListClassrooms encoded as a JSON array
func (d *Directory) ClassroomListJSON(ctx context.Context) ([]byte, error) {
	names, err := d.ListClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(names)
}

// ClassroomJSON returns GetClassroom encoded as {"classroom","description","images"}
func (d *Directory) ClassroomJSON(ctx context.Context, name string) ([]byte, error) {
	c, err := d.GetClassroom(ctx, name)
	if err != nil {
		return nil, err
	}
	return json.Marshal(toAPIClassroom(c))
}

func toAPIClassroom(c *domain.ResolvedClassroom) api.Classroom {
	return api.Classroom{
		Classroom:   c.Name,
		Description: c.Description,
		Images:      c.Images,
	}
}
