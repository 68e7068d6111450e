package movies

type MovieDetailsPayload struct {
	ID               int    `param:"id" query:"-" json:"id" validate:"min=1"`
	Language         string `param:"-" query:"language" json:"language,omitempty" mod:"trim" validate:"language"`
	AppendToResponse string `param:"-" query:"append_to_response" json:"append_to_response,omitempty" mod:"trim" default:"videos,credits" validate:"subresources"`
}

type GenresPayload struct {
	Language string `query:"language" json:"language,omitempty" mod:"trim" validate:"language"`
}
