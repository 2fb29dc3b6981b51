package domain

// Quick-filter ids accepted by the listing query composer.
const (
	FilterRating4Plus = "rating-4plus"
	FilterHasReviews  = "has-reviews"
	FilterToday       = "today"
	FilterLast7Days   = "last-7-days"
)

// Sort keys accepted by the listing query composer.
const (
	SortBestMatch   = "best-match"
	SortRating      = "rating"
	SortNewest      = "newest"
	SortName        = "name"
	SortReviewCount = "review-count"
)

// CompanyQuery is the full input set of the listing composer. Zero values mean
// "no constraint": an empty Service lists all categories, an empty Search skips
// free-text matching, and an empty SortBy falls back to best-match.
type CompanyQuery struct {
	Service string   `json:"service"`
	Search  string   `json:"search"`
	Filters []string `json:"filters"`
	SortBy  string   `json:"sortBy"`
}

// ListingResult is the settled state of one listing query: the ordered result
// set, or an error message with an empty set. Loading is reported separately
// by the composer snapshot.
type ListingResult struct {
	Companies []CompanyWithRating `json:"companies"`
	Error     string              `json:"error,omitempty"`
}

// ListingSnapshot is what the listing endpoint returns: the latest settled
// result plus the loading flag and the query it reflects.
type ListingSnapshot struct {
	Companies []CompanyWithRating `json:"companies"`
	Loading   bool                `json:"loading"`
	Error     string              `json:"error,omitempty"`
	Query     CompanyQuery        `json:"query"`
}
