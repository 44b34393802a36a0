package tripadvisor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHotelID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.tripadvisor.com.br/Hotel_Review-g644400-d1234567-Reviews-Hotel_Praia_Dourada.html", "1234567"},
		{"https://www.tripadvisor.com.br/Hotel_Review-g644400-d89-Reviews.html", "89"},
		{"https://www.tripadvisor.com.br/Tourism-g644400.html", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ExtractHotelID(tc.url), "url %s", tc.url)
	}
}

func decodeResults(t *testing.T, payload string) []graphqlResult {
	t.Helper()
	var results []graphqlResult
	require.NoError(t, json.Unmarshal([]byte(payload), &results))
	return results
}

func TestExtractRatingDataReviewSummary(t *testing.T) {
	results := decodeResults(t, `[
		{"data": {"reviewSummaryInfo": [{"responseData": {"rating": 4.5, "count": 892}}]}}
	]`)

	rd := extractRatingData(results)
	require.NotNil(t, rd)
	require.InDelta(t, 4.5, rd.Rating, 1e-9)
	require.Equal(t, 892, rd.ReviewCount)
	require.Equal(t, "reviewSummaryInfo", rd.Source)
}

func TestExtractRatingDataLocation(t *testing.T) {
	results := decodeResults(t, `[
		{"data": {"something": null}},
		{"data": {"location": {"rating": 4.2, "numberOfReviews": 310}}}
	]`)

	rd := extractRatingData(results)
	require.NotNil(t, rd)
	require.InDelta(t, 4.2, rd.Rating, 1e-9)
	require.Equal(t, 310, rd.ReviewCount)
	require.Equal(t, "location", rd.Source)
}

func TestExtractRatingDataLocationsArray(t *testing.T) {
	results := decodeResults(t, `[
		{"data": {"locations": [{"rating": 4.8, "numberOfReviews": 120}, {"rating": 1.0}]}}
	]`)

	rd := extractRatingData(results)
	require.NotNil(t, rd)
	require.InDelta(t, 4.8, rd.Rating, 1e-9)
	require.Equal(t, "locations", rd.Source)
}

func TestExtractRatingDataPartialLocation(t *testing.T) {
	// a location with only a rating still counts; the missing count is zero
	results := decodeResults(t, `[{"data": {"location": {"rating": 3.9}}}]`)

	rd := extractRatingData(results)
	require.NotNil(t, rd)
	require.InDelta(t, 3.9, rd.Rating, 1e-9)
	require.Zero(t, rd.ReviewCount)
}

func TestExtractRatingDataNothingUsable(t *testing.T) {
	require.Nil(t, extractRatingData(nil))
	require.Nil(t, extractRatingData(decodeResults(t, `[{"data": {"location": {}}}]`)))
	require.Nil(t, extractRatingData(decodeResults(t, `[{"data": null}, {}]`)))
}

func TestBuildPayloadQuerySet(t *testing.T) {
	payload := buildPayload(1234567)
	require.Len(t, payload, 5)

	wantIDs := []string{
		"b4613962d98df032", "5b064920a1417d48", "85513b806d5405da",
		"d9072109f7378ce1", "b6da76ae151e9c7c",
	}
	for i, block := range payload {
		ext := block["extensions"].(map[string]any)
		require.Equal(t, wantIDs[i], ext["preRegisteredQueryId"], "block %d", i)
	}

	detail := payload[1]["variables"].(map[string]any)
	require.Equal(t, 1234567, detail["locationId"])
}
