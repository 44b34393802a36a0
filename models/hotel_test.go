package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateHotelID(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Hotel São João", "sao_joao"},
		{"Hotel Praia Dourada", "praia_dourada"},
		{"Pousada Coração", "pousada_coracao"},
		{"Maragogi Brisa Exclusive", "maragogi_brisa_exclusive"},
		{"Grand Hotel Palace", "grand_palace"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, GenerateHotelID(tc.name), "name %q", tc.name)
	}
}

func TestFlexFloatUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`9.2`, 9.2},
		{`"9.2"`, 9.2},
		{`"9,2"`, 9.2},
		{`null`, 0},
		{`"n/a"`, 0},
		{`""`, 0},
	}

	for _, tc := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), "input %s", tc.in)
		require.InDelta(t, tc.want, float64(f), 1e-9, "input %s", tc.in)
	}
}

func TestFlexIntUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`1200`, 1200},
		{`"1200"`, 1200},
		{`1200.7`, 1200},
		{`null`, 0},
		{`"many"`, 0},
	}

	for _, tc := range cases {
		var i FlexInt
		require.NoError(t, json.Unmarshal([]byte(tc.in), &i), "input %s", tc.in)
		require.Equal(t, tc.want, int(i), "input %s", tc.in)
	}
}

func TestBookingNormalizeDefaults(t *testing.T) {
	raw := []byte(`{
		"hotel_name": "Hotel São João",
		"rating": "8,7",
		"reviews": 1200,
		"url": "https://www.booking.com/hotel/br/sao-joao.html",
		"timestamp": "2025-01-15T10:00:00",
		"source": "booking_realtime",
		"site": "booking"
	}`)

	var r BookingRaw
	require.NoError(t, json.Unmarshal(raw, &r))

	h := r.Normalize()
	require.Equal(t, "sao_joao", h.HotelID)
	require.InDelta(t, 8.7, h.Rating, 1e-9)
	require.Equal(t, 1200, h.ReviewCount)
	require.InDelta(t, 10.0, h.MaxRating, 1e-9)
	require.Equal(t, "html_parsing", h.DataSource)
	require.Equal(t, SiteBooking, h.Site)
}

func TestBookingNormalizeExplicitMaxRating(t *testing.T) {
	raw := []byte(`{"hotel_name": "Hotel Teste", "rating": 8.0, "max_rating": "10"}`)

	var r BookingRaw
	require.NoError(t, json.Unmarshal(raw, &r))
	require.InDelta(t, 10.0, r.Normalize().MaxRating, 1e-9)
}

func TestNormalizeClampsNegativeReviews(t *testing.T) {
	r := TripAdvisorRaw{HotelName: "Hotel Teste", Rating: 4.2, ReviewCount: -5}
	require.Equal(t, 0, r.Normalize().ReviewCount)
}

func TestNormalizeEmptyReviewsSlice(t *testing.T) {
	h := DecolarRaw{HotelName: "Hotel Teste"}.Normalize()
	require.Equal(t, []any{}, h.AdditionalInfo["reviews"])
}

func TestSiteInfosCoverAllSites(t *testing.T) {
	for _, site := range SiteOrder {
		info, ok := SiteInfos[site]
		require.True(t, ok, "site %s has no info", site)
		require.NotEmpty(t, info.Name)
		require.NotEmpty(t, info.RatingScale)
	}
}

func TestIsValidSite(t *testing.T) {
	require.True(t, IsValidSite("booking"))
	require.False(t, IsValidSite("expedia"))
	require.False(t, IsValidSite(""))
}
