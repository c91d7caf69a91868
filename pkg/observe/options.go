package observe

// PropertyOption is a functional option for configuring properties.
type PropertyOption[T any] func(*propertyOptions[T])

// propertyOptions holds configuration applied at construction.
type propertyOptions[T any] struct {
	equal  func(T, T) bool
	getter func() T
	setter func(T)
}

// WithEquals sets a custom equality function used by Set's change
// detection. Useful for types where reflect.DeepEqual is too expensive or
// has the wrong semantics.
//
// Example:
//
//	user := observe.NewProperty(User{}, observe.WithEquals(func(a, b User) bool {
//	    return a.ID == b.ID
//	}))
func WithEquals[T any](fn func(T, T) bool) PropertyOption[T] {
	return func(o *propertyOptions[T]) {
		o.equal = fn
	}
}

// WithGetter installs a getter hook at construction time.
// Equivalent to calling InstallGetter immediately after NewProperty.
func WithGetter[T any](getter func() T) PropertyOption[T] {
	return func(o *propertyOptions[T]) {
		o.getter = getter
	}
}

// WithSetter installs a setter hook at construction time.
// Equivalent to calling InstallSetter immediately after NewProperty.
func WithSetter[T any](setter func(T)) PropertyOption[T] {
	return func(o *propertyOptions[T]) {
		o.setter = setter
	}
}

// applyPropertyOptions applies the given options and returns the
// resulting config.
func applyPropertyOptions[T any](opts []PropertyOption[T]) propertyOptions[T] {
	var options propertyOptions[T]
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
