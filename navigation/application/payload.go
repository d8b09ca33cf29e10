package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dfryer1193/campusnav/api"
	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names so messages match the payload the operator wrote
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ParseClassrooms decodes a JSON array of classroom records, keeping payload order.
// A record missing a field, a record with an empty name, or a repeated name is rejected.
func ParseClassrooms(payload string) ([]*domain.Classroom, error) {
	var protos []*api.ClassroomProto
	if err := decodeArray(payload, &protos); err != nil {
		return nil, fmt.Errorf("%w: classrooms: %w", domain.ErrParse, err)
	}

	seen := make(map[string]struct{}, len(protos))
	classrooms := make([]*domain.Classroom, 0, len(protos))
	for i, p := range protos {
		if p == nil {
			return nil, fmt.Errorf("%w: classrooms[%d] is null", domain.ErrParse, i)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: classrooms[%d]: %s", domain.ErrParse, i, describeValidation(err))
		}
		if _, dup := seen[*p.Classroom]; dup {
			return nil, fmt.Errorf("%w: classrooms[%d]: duplicate classroom %q", domain.ErrParse, i, *p.Classroom)
		}
		seen[*p.Classroom] = struct{}{}

		refs := make([]string, len(*p.Images))
		copy(refs, *p.Images)
		classrooms = append(classrooms, &domain.Classroom{
			Name:        *p.Classroom,
			Description: *p.Description,
			ImageRefs:   refs,
		})
	}

	return classrooms, nil
}

// ParseImages decodes a JSON array of image records.
// A record missing a field, a record with an empty name, or a repeated name is rejected.
func ParseImages(payload string) ([]*domain.Image, error) {
	var protos []*api.ImageProto
	if err := decodeArray(payload, &protos); err != nil {
		return nil, fmt.Errorf("%w: images: %w", domain.ErrParse, err)
	}

	seen := make(map[string]struct{}, len(protos))
	imgs := make([]*domain.Image, 0, len(protos))
	for i, p := range protos {
		if p == nil {
			return nil, fmt.Errorf("%w: images[%d] is null", domain.ErrParse, i)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: images[%d]: %s", domain.ErrParse, i, describeValidation(err))
		}
		if _, dup := seen[*p.ImageName]; dup {
			return nil, fmt.Errorf("%w: images[%d]: duplicate image %q", domain.ErrParse, i, *p.ImageName)
		}
		seen[*p.ImageName] = struct{}{}

		imgs = append(imgs, &domain.Image{
			Name:    *p.ImageName,
			Payload: *p.Image,
		})
	}

	return imgs, nil
}

// decodeArray unmarshals payload into out and rejects a top-level null
func decodeArray[T any](payload string, out *[]T) error {
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return err
	}
	if *out == nil {
		return errors.New("expected a JSON array, got null")
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing field %q", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %q must not be empty", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %q failed %q", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, ", ")
}
