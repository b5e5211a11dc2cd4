package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // safe to show to the caller
	Fields    map[string]string // per-field validation errors (optional)
	Status    int               // explicit HTTP status; overrides the Kind mapping when > 0
	Detail    any               // structured extra payload (e.g. relayed gateway body)
	Err       error             // internal error, for logs only
}
