package jobs

type ListRunsQuery struct {
	Limit  int      `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status []string `query:"status" json:"status,omitempty" validate:"dive,oneof=running completed failed"`
	Job    *string  `query:"job" json:"job,omitempty" validate:"omitempty,oneof=cache_prune trending_refresh popular_refresh"`
}
