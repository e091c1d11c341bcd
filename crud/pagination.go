package crud

import "strconv"

// DefaultMaxLimit bounds page sizes when a router does not configure its own
// maximum.
const DefaultMaxLimit = 1000

// Page is a validated pagination window. Limit == 0 means "no limit was
// requested" (bounded only by the configured maximum at parse time).
type Page struct {
	Skip  int
	Limit int
}

// ParsePage validates the skip/limit wire parameters: skip must be
// non-negative and limit, when given, must be positive and no larger than
// maxLimit. Violations are user-input errors and never reach a backend.
func ParsePage(skipStr, limitStr string, maxLimit int) (Page, error) {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	page := Page{}

	if skipStr != "" {
		skip, err := strconv.Atoi(skipStr)
		if err != nil {
			return page, InvalidQueryf("skip must be an integer")
		}
		if skip < 0 {
			return page, InvalidQueryf("skip must be greater or equal to zero")
		}
		page.Skip = skip
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return page, InvalidQueryf("limit must be an integer")
		}
		if limit <= 0 {
			return page, InvalidQueryf("limit must be greater than zero")
		}
		if limit > maxLimit {
			return page, InvalidQueryf("limit must be less or equal to %d", maxLimit)
		}
		page.Limit = limit
	} else {
		page.Limit = maxLimit
	}
	return page, nil
}

// Window applies the page to an in-memory result length, returning the
// [low, high) slice bounds. Document backends page client-side with this.
func (p Page) Window(n int) (int, int) {
	low := p.Skip
	if low > n {
		low = n
	}
	high := n
	if p.Limit > 0 && low+p.Limit < high {
		high = low + p.Limit
	}
	return low, high
}
