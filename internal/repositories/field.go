package repositories

// Field carries the three-way update semantics of a merge: left unset it
// means "leave unchanged", Clear means "set to NULL", Set means "write this
// value". Clearing a file must be expressible independently of leaving the
// structured data untouched, so a plain pointer is not enough.
type Field[T any] struct {
	set   bool
	valid bool
	value T
}

// Set returns a field that writes value.
func Set[T any](value T) Field[T] {
	return Field[T]{set: true, valid: true, value: value}
}

// Clear returns a field that nulls the column.
func Clear[T any]() Field[T] {
	return Field[T]{set: true}
}

// Apply records the field into a gorm updates map under column.
func (f Field[T]) Apply(updates map[string]interface{}, column string) {
	if !f.set {
		return
	}
	if !f.valid {
		updates[column] = nil
		return
	}
	updates[column] = f.value
}

// Value returns the carried value and whether one is present.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set && f.valid
}
