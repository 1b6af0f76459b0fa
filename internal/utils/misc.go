package utils

func Ptr[T any](v T) *T {
	return &v
}

// StrPtrOrNil returns nil for the empty string.
func StrPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Val[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}
