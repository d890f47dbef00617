package repository

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps list parameters to the supported page window.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
