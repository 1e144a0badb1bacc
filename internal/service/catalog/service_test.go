package catalog

import (
	"testing"

	"github.com/elliotchance/pie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/model/catalog"
)

func names(ps []catalog.Professional) []string {
	return pie.Map(ps, func(p catalog.Professional) string { return p.Name })
}

func TestProfessionalsDefaultSortByRating(t *testing.T) {
	svc := NewService()

	got, err := svc.Professionals(ProfessionalQuery{})
	require.NoError(t, err)
	require.Len(t, got, 8)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Rating, got[i].Rating)
	}
	// 同分保持原顺序
	assert.Equal(t, []string{"Dr. Ben Carter", "Brother Leo"}, names(got[:2]))
}

func TestProfessionalsSortLeavesDirectoryOrder(t *testing.T) {
	svc := NewService()

	byPrice, err := svc.Professionals(ProfessionalQuery{Sort: SortDesc})
	require.NoError(t, err)
	require.Len(t, byPrice, 8)
	assert.Equal(t, "Dr. Alisha Chen", byPrice[0].Name)
	assert.Equal(t, "Brother Leo", byPrice[7].Name)

	byRating, err := svc.Professionals(ProfessionalQuery{Sort: SortRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr. Ben Carter", "Brother Leo", "Dr. Evelyn Reed", "Dr. Alisha Chen", "Anya Sharma"}, names(byRating[:5]))
}

func TestProfessionalsFilters(t *testing.T) {
	svc := NewService()

	cases := []struct {
		name  string
		query ProfessionalQuery
		want  []string
	}{
		{"search by name", ProfessionalQuery{Search: "reed"}, []string{"Dr. Evelyn Reed"}},
		{"search by specialty", ProfessionalQuery{Search: "TRAUMA", Sort: SortAsc}, []string{"Dr. Evelyn Reed", "Dr. Ben Carter"}},
		{"type", ProfessionalQuery{Type: "Counselor", Sort: SortAsc}, []string{"Marcus Thorne", "Sofia Reyes"}},
		{"available now free session", ProfessionalQuery{AvailableNow: true, FreeSession: true, Sort: SortAsc}, []string{"Anya Sharma", "Marcus Thorne"}},
		{"low tier", ProfessionalQuery{Price: PriceLow}, []string{"Brother Leo"}},
		{"high tier", ProfessionalQuery{Price: PriceHigh, Sort: SortDesc}, []string{"Dr. Alisha Chen", "Dr. Ben Carter"}},
		{"mid tier bounds inclusive", ProfessionalQuery{Price: PriceMid, Sort: SortAsc}, []string{"Anya Sharma", "Marcus Thorne", "Sofia Reyes", "Jamal Green", "Dr. Evelyn Reed"}},
		{"no match", ProfessionalQuery{Search: "astrology"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Professionals(tc.query)
			require.NoError(t, err)
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestProfessionalsRejectsUnknownValues(t *testing.T) {
	svc := NewService()

	for _, q := range []ProfessionalQuery{{Price: "cheap"}, {Sort: "name"}, {Type: "Astrologer"}} {
		_, err := svc.Professionals(q)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	}

	got, err := svc.Professionals(ProfessionalQuery{Type: "Yoga Therapist"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anya Sharma"}, names(got))
}

func TestProfessionalByID(t *testing.T) {
	svc := NewService()

	p, err := svc.Professional(3)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Alisha Chen", p.Name)

	_, err = svc.Professional(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResources(t *testing.T) {
	svc := NewService()

	all, err := svc.Resources(ResourceQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	audio, err := svc.Resources(ResourceQuery{Filter: "Audio"})
	require.NoError(t, err)
	assert.Len(t, audio, 2)

	reading, err := svc.Resources(ResourceQuery{Filter: "Reading", Search: "compassion"})
	require.NoError(t, err)
	require.Len(t, reading, 1)
	assert.Equal(t, 6, reading[0].ID)

	none, err := svc.Resources(ResourceQuery{Filter: "Exercise"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.Resources(ResourceQuery{Filter: "Podcast"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	r, err := svc.Resource(4)
	require.NoError(t, err)
	assert.Equal(t, "Reading", r.Section)
	_, err = svc.Resource(0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommunities(t *testing.T) {
	svc := NewService()

	listing, err := svc.Communities(CommunityQuery{})
	require.NoError(t, err)
	assert.Len(t, listing.Open, 3)
	assert.Len(t, listing.Guided, 3)
	assert.Contains(t, listing.Filters, "Dynamic Dancing")

	listing, err = svc.Communities(CommunityQuery{View: ViewGuided, Category: "Meditation"})
	require.NoError(t, err)
	assert.Empty(t, listing.Open)
	require.Len(t, listing.Guided, 1)
	assert.Equal(t, "Brother Leo", listing.Guided[0].GuideName)

	listing, err = svc.Communities(CommunityQuery{Search: "mandala"})
	require.NoError(t, err)
	assert.Len(t, listing.Open, 1)
	assert.Len(t, listing.Guided, 1)

	_, err = svc.Communities(CommunityQuery{View: "closed"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestStaticLists(t *testing.T) {
	svc := NewService()
	assert.Len(t, svc.Feelings(), 5)
	assert.Len(t, svc.Stories(), 4)
}
