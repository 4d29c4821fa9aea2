package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
// Identifiers are opaque strings, so only presence is enforced.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// DateQuery carries an optional calendar day in YYYY-MM-DD form.
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// NowQuery lets dashboard callers pin the reference instant (RFC 3339).
// An empty value means the server clock.
type NowQuery struct {
	Now string `form:"now" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
