package utils

func Filter[T any](s []T, f func(T) bool) []T {
	// Pre-allocate with input length as capacity (worst case: all elements pass filter)
	r := make([]T, 0, len(s))
	for _, v := range s {
		if f(v) {
			r = append(r, v)
		}
	}
	return r
}

func Map[T, U any](s []T, f func(T) U) []U {
	r := make([]U, len(s))
	for i, v := range s {
		r[i] = f(v)
	}
	return r
}

func Find[T any](s []T, f func(T) bool) (T, bool) {
	for _, v := range s {
		if f(v) {
			return v, true
		}
	}
	var t T
	return t, false
}

func Any[T any](s []T, f func(T) bool) bool {
	_, ok := Find(s, f)
	return ok
}
