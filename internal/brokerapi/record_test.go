package brokerapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, raw string) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestRecordAccessors(t *testing.T) {
	rec := decodeRecord(t, `{
		"_id": "abc",
		"price": 1250000,
		"commission": "12,500.75",
		"licensed": true,
		"createdAt": "2024-03-05T08:30:00Z",
		"developer": {"name": " Ayala Land ", "address": {"city": "Cebu"}},
		"tags": ["a", "b"]
	}`)

	assert.Equal(t, "abc", rec.ID())
	assert.Equal(t, "1250000", rec.String("price"))
	assert.Equal(t, "Ayala Land", rec.String("developer.name"))
	assert.Equal(t, "Cebu", rec.String("developer.address.city"))
	assert.Equal(t, `["a","b"]`, rec.String("tags"))
	assert.Equal(t, "", rec.String("developer.missing"))
	assert.Equal(t, "", rec.String("price.nested"))

	f, ok := rec.Float("commission")
	assert.True(t, ok)
	assert.InDelta(t, 12500.75, f, 0.001)
	_, ok = rec.Float("developer")
	assert.False(t, ok)

	assert.True(t, rec.Bool("licensed"))
	assert.False(t, rec.Bool("missing"))

	assert.Equal(t, time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), rec.Time("createdAt").UTC())
	assert.True(t, rec.Time("developer").IsZero())
}

func TestRecordIDPrefersID(t *testing.T) {
	rec := Record{"id": float64(7), "_id": "ignored"}
	assert.Equal(t, "7", rec.ID())
	assert.Equal(t, "", Record(nil).ID())
}

func TestRecordLookupThroughNestedRecord(t *testing.T) {
	rec := Record{"agent": Record{"name": "Venus"}}
	assert.Equal(t, "Venus", rec.String("agent.name"))
}

func TestRecordCloneIsDeep(t *testing.T) {
	rec := decodeRecord(t, `{"id":1,"developer":{"name":"Ayala"},"tags":["x"]}`)
	clone := rec.Clone()

	clone["developer"].(map[string]any)["name"] = "Changed"
	clone["tags"].([]any)[0] = "y"

	assert.Equal(t, "Ayala", rec.String("developer.name"))
	assert.Equal(t, `["x"]`, rec.String("tags"))
	assert.Nil(t, CloneRecords(nil))
}

func TestParseTimeLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:00:00.123Z", time.Date(2024, 1, 15, 10, 0, 0, 123000000, time.UTC)},
		{"2024-01-15 10:00:00", time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got := ParseTime(tt.in)
		assert.True(t, tt.want.Equal(got), "ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
	}
	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("yesterday").IsZero())
}

func TestPayloadEncodeJSONDefaultsToEmptyObject(t *testing.T) {
	body, contentType, err := Payload{}.Encode()
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	assert.Empty(t, decoded)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindUnauthorized, Status: 401}, "Session expired, please log in again"},
		{&Error{Kind: KindNetwork}, "Cannot reach the server"},
		{&Error{Kind: KindServer, Status: 500, Message: "db down"}, "Server error: db down"},
		{&Error{Kind: KindClient, Status: 422, Message: "Email taken"}, "Email taken"},
		{&Error{Kind: KindClient, Status: 404}, "Not Found"},
		{&Error{Kind: KindDecode}, "Unexpected response from the server"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
	assert.Equal(t, "", Message(nil))
}
