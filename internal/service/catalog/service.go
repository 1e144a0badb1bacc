package catalog

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/model/catalog"
)

var (
	ErrNotFound     = errors.New("catalog item not found")
	ErrInvalidQuery = errors.New("invalid catalog query")
)

// Price tiers follow the directory filter: under 75, 75 to 150, over 150.
const (
	PriceAll   = "all"
	PriceLow   = "tier1"
	PriceMid   = "tier2"
	PriceHigh  = "tier3"
	SortRating = "rating"
	SortAsc    = "price-asc"
	SortDesc   = "price-desc"
)

// Community views.
const (
	ViewOpen   = "open"
	ViewGuided = "guided"
)

const filterAll = "All"

// ProfessionalQuery filters the directory. Zero values mean "no filter".
type ProfessionalQuery struct {
	Search       string
	Type         string `validate:"omitempty,oneof=All Psychologist Counselor Psychiatrist Therapist 'Yoga Therapist' 'Spiritual Guide'"`
	AvailableNow bool
	FreeSession  bool
	Price        string `validate:"omitempty,oneof=all tier1 tier2 tier3"`
	Sort         string `validate:"omitempty,oneof=rating price-asc price-desc"`
}

type ResourceQuery struct {
	Search string
	Filter string `validate:"omitempty,oneof=All Meditation Reading Exercise Audio Video"`
}

type CommunityQuery struct {
	View     string `validate:"omitempty,oneof=open guided"`
	Category string
	Search   string
}

// CommunityListing groups the two community kinds. A view query leaves the
// other group empty.
type CommunityListing struct {
	Open   []catalog.Community     `json:"open"`
	Guided []catalog.GuidedJourney `json:"guided"`
	// Filters 分类标签
	Filters []string `json:"filters"`
}

// Service serves the static catalog. The data is read-only after construction.
type Service struct {
	professionals []catalog.Professional
	resources     []catalog.Resource
	open          []catalog.Community
	guided        []catalog.GuidedJourney
	feelings      []catalog.Feeling
	stories       []catalog.Story
	validate      *validator.Validate
}

func NewService() *Service {
	return &Service{
		professionals: catalog.Professionals(),
		resources:     catalog.Resources(),
		open:          catalog.OpenCommunities(),
		guided:        catalog.GuidedJourneys(),
		feelings:      catalog.Feelings(),
		stories:       catalog.Stories(),
		validate:      validator.New(),
	}
}

func (s *Service) Feelings() []catalog.Feeling {
	return append([]catalog.Feeling(nil), s.feelings...)
}

func (s *Service) Stories() []catalog.Story {
	return append([]catalog.Story(nil), s.stories...)
}

// Professionals returns the matching directory entries, highest rated first
// unless another order is requested.
func (s *Service) Professionals(q ProfessionalQuery) ([]catalog.Professional, error) {
	if err := s.check(q); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	matched := pie.Filter(s.professionals, func(p catalog.Professional) bool {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!pie.Any(p.Specialties, func(sp string) bool { return strings.Contains(strings.ToLower(sp), search) }) {
			return false
		}
		if q.Type != "" && q.Type != filterAll && p.Type != q.Type {
			return false
		}
		if q.AvailableNow && p.Availability != catalog.AvailableNow {
			return false
		}
		if q.FreeSession && !p.FreeSession {
			return false
		}
		return inPriceTier(p.Pricing, q.Price)
	})

	// matched 是 Filter 新建的切片，可以原地排序
	order := func(a, b catalog.Professional) int { return cmp.Compare(b.Rating, a.Rating) }
	switch q.Sort {
	case SortAsc:
		order = func(a, b catalog.Professional) int { return cmp.Compare(a.Pricing, b.Pricing) }
	case SortDesc:
		order = func(a, b catalog.Professional) int { return cmp.Compare(b.Pricing, a.Pricing) }
	}
	slices.SortStableFunc(matched, order)
	return orEmpty(matched), nil
}

func inPriceTier(price int, tier string) bool {
	switch tier {
	case PriceLow:
		return price < 75
	case PriceMid:
		return price >= 75 && price <= 150
	case PriceHigh:
		return price > 150
	default:
		return true
	}
}

func (s *Service) Professional(id int) (catalog.Professional, error) {
	idx := pie.FindFirstUsing(s.professionals, func(p catalog.Professional) bool { return p.ID == id })
	if idx < 0 {
		return catalog.Professional{}, ErrNotFound
	}
	return s.professionals[idx], nil
}

// Resources matches title or description, and the filter against either the
// section or the media category.
func (s *Service) Resources(q ResourceQuery) ([]catalog.Resource, error) {
	if err := s.check(q); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	return orEmpty(pie.Filter(s.resources, func(r catalog.Resource) bool {
		if !matchesText(search, r.Title, r.Description) {
			return false
		}
		return q.Filter == "" || q.Filter == filterAll || q.Filter == r.Section || q.Filter == r.Category
	})), nil
}

func (s *Service) Resource(id int) (catalog.Resource, error) {
	idx := pie.FindFirstUsing(s.resources, func(r catalog.Resource) bool { return r.ID == id })
	if idx < 0 {
		return catalog.Resource{}, ErrNotFound
	}
	return s.resources[idx], nil
}

func (s *Service) Communities(q CommunityQuery) (CommunityListing, error) {
	if err := s.check(q); err != nil {
		return CommunityListing{}, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	keep := func(c catalog.Community) bool {
		if q.Category != "" && q.Category != filterAll && c.Category != q.Category {
			return false
		}
		return matchesText(search, c.Title, c.Description)
	}

	listing := CommunityListing{
		Open:    []catalog.Community{},
		Guided:  []catalog.GuidedJourney{},
		Filters: append([]string(nil), catalog.CommunityFilters...),
	}
	if q.View != ViewGuided {
		listing.Open = orEmpty(pie.Filter(s.open, keep))
	}
	if q.View != ViewOpen {
		listing.Guided = orEmpty(pie.Filter(s.guided, func(j catalog.GuidedJourney) bool { return keep(j.Community) }))
	}
	return listing, nil
}

func (s *Service) check(q any) error {
	if err := s.validate.Struct(q); err != nil {
		return oops.In("catalog").Wrapf(errors.Join(ErrInvalidQuery, err), "query rejected")
	}
	return nil
}

func matchesText(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	return pie.Any(fields, func(f string) bool { return strings.Contains(strings.ToLower(f), search) })
}

// orEmpty keeps empty results encoding as [] rather than null.
func orEmpty[T any](ss []T) []T {
	if ss == nil {
		return []T{}
	}
	return ss
}
