package api

// Classroom is the response body of GET /classroom.
type Classroom struct {
	Classroom   string   `json:"classroom"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// ClassroomProto is one element of the classroom payload loaded at startup.
// Fields are pointers so that a missing key can be told apart from an empty value.
type ClassroomProto struct {
	Classroom   *string   `json:"classroom" validate:"required,min=1"`
	Description *string   `json:"description" validate:"required"`
	Images      *[]string `json:"images" validate:"required"`
}

// ImageProto is one element of the image payload loaded at startup.
type ImageProto struct {
	ImageName *string `json:"image_name" validate:"required,min=1"`
	Image     *string `json:"image" validate:"required"`
}

type Error struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// Health is the response body of GET /healthz.
type Health struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
