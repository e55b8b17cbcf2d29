package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/tableview"
)

func ids(screens []Screen) []string {
	out := make([]string, len(screens))
	for i, s := range screens {
		out[i] = s.ID
	}
	return out
}

func TestScreensAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All() {
		assert.False(t, seen[s.ID], "duplicate screen id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.Title, s.ID)
		assert.NotEmpty(t, s.Path, s.ID)
		assert.NotEmpty(t, s.Key, s.ID)
		assert.NotEmpty(t, s.Roles, s.ID)
		assert.NotEmpty(t, s.Columns, s.ID)
		assert.NotNil(t, s.Filter.Search, s.ID)
		if s.CanCreate || s.CanEdit {
			assert.NotEmpty(t, s.Form, "%s offers forms without fields", s.ID)
		}
		if s.CanCreate || s.CanEdit || s.CanDelete || len(s.Custom) > 0 {
			assert.NotEmpty(t, s.Editors, "%s offers actions without editors", s.ID)
		}
	}
}

func TestForRole(t *testing.T) {
	assert.Equal(t, []string{Developers, Properties, Affiliates, PendingAffiliates, LicensedAffiliates, Unlicensed, SalesAdmin, SalesReports},
		ids(ForRole(session.RoleAdmin)))
	assert.Equal(t, []string{Developers, Properties, MySales}, ids(ForRole(session.RoleAgent)))
	assert.Equal(t, []string{Developers, Properties, MySales, SalesReports}, ids(ForRole(session.RoleBroker)))
	assert.Empty(t, ForRole(session.Role(7)))
}

func TestLookupAndEnvelopeKeys(t *testing.T) {
	tests := map[string]string{
		PendingAffiliates: "pendingAgents",
		Unlicensed:        "unlicensed",
		Properties:        "property",
		SalesAdmin:        "salesEncodingAdmin",
	}
	for id, key := range tests {
		s, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, key, s.Key, id)
	}
	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestRoute(t *testing.T) {
	admin := session.Session{Token: "t", Role: session.RoleAdmin}
	agent := session.Session{Token: "t", Role: session.RoleAgent}

	tests := []struct {
		name      string
		session   session.Session
		requested string
		want      string
	}{
		{"signed out goes to login", session.Session{}, Properties, LoginRoute},
		{"signed out stays on login", session.Session{}, LoginRoute, LoginRoute},
		{"signed in leaves login", admin, LoginRoute, Developers},
		{"allowed screen", admin, PendingAffiliates, PendingAffiliates},
		{"forbidden screen goes home", agent, PendingAffiliates, Developers},
		{"unknown screen goes home", agent, "nope", Developers},
		{"agent own sales", agent, MySales, MySales},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.session, tt.requested))
		})
	}
}

func TestPeso(t *testing.T) {
	assert.Equal(t, "₱1,234,567.00", Peso(1234567))
	assert.Equal(t, "₱0.50", Peso(0.5))
	assert.Equal(t, "-₱12.25", Peso(-12.25))
}

func TestFullNameAndRole(t *testing.T) {
	r := brokerapi.Record{"firstName": "Aldin", "lastName": "Tagolimot", "role": float64(2)}
	assert.Equal(t, "Aldin Tagolimot", FullName(r))
	assert.Equal(t, "Broker", AffiliateRole(r))
	assert.Equal(t, "Ayala Land", FullName(brokerapi.Record{"name": "Ayala Land"}))
	assert.Equal(t, "", AffiliateRole(brokerapi.Record{}))
}

func TestPendingScreenPipeline(t *testing.T) {
	s, ok := Lookup(PendingAffiliates)
	require.True(t, ok)

	raw := []brokerapi.Record{
		{"id": float64(1), "firstName": "Aldin", "lastName": "Tagolimot", "role": float64(1), "createdAt": "2024-01-15T08:00:00Z"},
		{"id": float64(2), "firstName": "Venus", "lastName": "Reyes", "role": float64(2), "createdAt": "2024-02-10T08:00:00Z"},
		{"id": float64(3), "firstName": "Ricky", "lastName": "Roa", "role": float64(1), "createdAt": "2024-03-05T08:00:00Z"},
	}

	state := tableview.NewState(s.PageSize)
	state.SearchText = "ald"
	res := s.Apply(raw, state)
	require.Len(t, res.Displayed, 1)
	assert.Equal(t, "Aldin Tagolimot", s.TitleOf(res.Displayed[0]))

	state = tableview.NewState(s.PageSize).WithStructured("role", "agent")
	res = s.Apply(raw, state)
	assert.Len(t, res.Filtered, 2)
	assert.Equal(t, "Showing 1 to 2 of 2 entries", res.Summary)

	state = state.WithStructured("registered", "2024-03-01..2024-03-31")
	res = s.Apply(raw, state)
	require.Len(t, res.Filtered, 1)
	assert.Equal(t, "3", res.Filtered[0].ID())

	action, ok := s.CustomAction("a")
	require.True(t, ok)
	assert.Equal(t, "approve", action.Name)
}

func TestPropertiesSearchMatchesFormattedPrice(t *testing.T) {
	s, ok := Lookup(Properties)
	require.True(t, ok)
	raw := []brokerapi.Record{
		{"id": "p1", "propertyName": "Lot 4", "price": float64(1250000), "category": "Lot Only", "status": "Sold"},
		{"id": "p2", "propertyName": "Unit 12B", "price": float64(4800000), "category": "Condominium", "status": "Available"},
	}
	state := tableview.NewState(s.PageSize)
	state.SearchText = "1,250"
	res := s.Apply(raw, state)
	require.Len(t, res.Filtered, 1)
	assert.Equal(t, "p1", res.Filtered[0].ID())

	state = tableview.NewState(s.PageSize).WithStructured("category", "sold")
	assert.Empty(t, s.Apply(raw, state).Displayed)

	state = tableview.NewState(s.PageSize).WithStructured("status", "Sold")
	res = s.Apply(raw, state)
	assert.Equal(t, "Showing 1 to 1 of 1 entries", res.Summary)
}

func TestTitleOfFallsBackToID(t *testing.T) {
	s, _ := Lookup(Developers)
	assert.Equal(t, "#9", s.TitleOf(brokerapi.Record{"id": float64(9)}))
}

func TestEditable(t *testing.T) {
	s, _ := Lookup(Properties)
	assert.True(t, s.Editable(session.RoleAdmin))
	assert.False(t, s.Editable(session.RoleAgent))
	reports, _ := Lookup(SalesReports)
	assert.False(t, reports.Editable(session.RoleAdmin))
}
