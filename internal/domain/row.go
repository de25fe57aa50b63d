package domain

// Row é um registro devolvido pela API: nome do campo -> valor.
// Campos podem estar ausentes em qualquer registro.
type Row map[string]any

// Get é total: campo ausente devolve (nil, false)
func (r Row) Get(field string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r[field]
	return value, ok
}

// ID devolve o campo "id" como string, ou vazio
func (r Row) ID() string {
	value, ok := r.Get("id")
	if !ok || value == nil {
		return ""
	}
	if id, ok := value.(string); ok {
		return id
	}
	return ""
}

// Project mantém apenas os campos da lista, na ordem da lista.
// Campos ausentes ficam como nil.
func (r Row) Project(fields []string) []any {
	values := make([]any, len(fields))
	for i, field := range fields {
		values[i], _ = r.Get(field)
	}
	return values
}
