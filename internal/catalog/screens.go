package catalog

import (
	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/tableview"
)

type rec = brokerapi.Record

// Screen IDs.
const (
	Developers         = "developers"
	Properties         = "properties"
	Affiliates         = "affiliates"
	PendingAffiliates  = "pending"
	LicensedAffiliates = "licensed"
	Unlicensed         = "unlicensed"
	SalesAdmin         = "sales-admin"
	MySales            = "my-sales"
	SalesReports       = "sales-reports"
)

var (
	adminOnly  = []session.Role{session.RoleAdmin}
	everyone   = []session.Role{session.RoleAdmin, session.RoleAgent, session.RoleBroker}
	affiliates = []session.Role{session.RoleAgent, session.RoleBroker}
	reporters  = []session.Role{session.RoleAdmin, session.RoleBroker}
)

var (
	propertyCategories = []string{"House and Lot", "Condominium", "Lot Only", "Commercial"}
	propertyStatuses   = []string{"Available", "Reserved", "Sold"}
	salesStatuses      = []string{"Pending", "Approved", "Cancelled"}
	roleOptions        = []string{"Agent", "Broker"}
	financingOptions   = []string{"Cash", "Bank Financing", "In-house Financing", "Pag-IBIG"}
)

func screens() []Screen {
	return []Screen{
		developersScreen(),
		propertiesScreen(),
		affiliatesScreen(),
		pendingScreen(),
		licensedScreen(),
		unlicensedScreen(),
		salesAdminScreen(),
		mySalesScreen(),
		salesReportsScreen(),
	}
}

func developersScreen() Screen {
	return Screen{
		ID:      Developers,
		Title:   "Developers",
		Path:    "/api/developer",
		Key:     "developer",
		Roles:   everyone,
		Editors: adminOnly,
		Columns: []Column{
			{Title: "Developer", Width: 28, Value: field("name")},
			{Title: "Address", Width: 32, Value: field("address")},
			{Title: "Contact", Width: 16, Value: field("contactNumber")},
			{Title: "Email", Width: 24, Value: field("email")},
		},
		Filter: tableview.Filter[rec]{
			Search: search(field("name"), field("address"), field("email")),
		},
		PageSize:  10,
		RowTitle:  field("name"),
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
		Form: []actions.FormField{
			{Name: "name", Label: "Name", Required: true},
			{Name: "address", Label: "Address", Required: true},
			{Name: "contactNumber", Label: "Contact number"},
			{Name: "email", Label: "Email"},
			{Name: "logo", Label: "Logo", Kind: actions.FieldFile},
		},
	}
}

func propertiesScreen() Screen {
	return Screen{
		ID:      Properties,
		Title:   "Properties",
		Path:    "/api/property",
		Key:     "property",
		Roles:   everyone,
		Editors: adminOnly,
		Columns: []Column{
			{Title: "Property", Width: 26, Value: field("propertyName")},
			{Title: "Developer", Width: 20, Value: firstOf("developer.name", "developer")},
			{Title: "Category", Width: 14, Value: field("category")},
			{Title: "Location", Width: 22, Value: field("location")},
			{Title: "Price", Width: 16, Value: money("price")},
			{Title: "Status", Width: 10, Value: field("status")},
		},
		Filter: tableview.Filter[rec]{
			Search: search(field("propertyName"), firstOf("developer.name", "developer"),
				field("category"), field("location"), money("price")),
			Predicates: []tableview.Predicate[rec]{
				tableview.Equals("category", "Category", field("category"), propertyCategories...),
				tableview.Equals("status", "Status", field("status"), propertyStatuses...),
			},
		},
		PageSize:  10,
		RowTitle:  field("propertyName"),
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
		Form: []actions.FormField{
			{Name: "propertyName", Label: "Property name", Required: true},
			{Name: "developer", Label: "Developer", Required: true, Source: "developer.name"},
			{Name: "category", Label: "Category", Kind: actions.FieldChoice, Required: true, Options: propertyCategories},
			{Name: "location", Label: "Location", Required: true},
			{Name: "price", Label: "Price", Kind: actions.FieldNumber, Required: true, Min: actions.Bound(0)},
			{Name: "status", Label: "Status", Kind: actions.FieldChoice, Options: propertyStatuses},
			{Name: "image", Label: "Image", Kind: actions.FieldFile},
		},
	}
}

func affiliateColumns() []Column {
	return []Column{
		{Title: "Name", Width: 26, Value: FullName},
		{Title: "Email", Width: 26, Value: field("email")},
		{Title: "Role", Width: 8, Value: AffiliateRole},
		{Title: "Contact", Width: 14, Value: field("contactNumber")},
		{Title: "License", Width: 14, Value: field("prcLicenseNumber")},
	}
}

func affiliateFilter() tableview.Filter[rec] {
	return tableview.Filter[rec]{
		Search: search(FullName, field("email"), AffiliateRole, field("prcLicenseNumber")),
		Predicates: []tableview.Predicate[rec]{
			tableview.Equals("role", "Role", AffiliateRole, roleOptions...),
		},
	}
}

func affiliatesScreen() Screen {
	filter := affiliateFilter()
	filter.Predicates = append(filter.Predicates,
		tableview.Equals("license", "License", licenseStatus, "Licensed", "Unlicensed"))
	return Screen{
		ID:        Affiliates,
		Title:     "Brokers & Agents",
		Path:      "/api/admin/agents",
		Key:       "agents",
		Roles:     adminOnly,
		Editors:   adminOnly,
		Columns:   append(affiliateColumns(), Column{Title: "Status", Width: 10, Value: licenseStatus}),
		Filter:    filter,
		PageSize:  10,
		RowTitle:  FullName,
		CanEdit:   true,
		CanDelete: true,
		Form: []actions.FormField{
			{Name: "firstName", Label: "First name", Required: true},
			{Name: "lastName", Label: "Last name", Required: true},
			{Name: "email", Label: "Email", Required: true},
			{Name: "contactNumber", Label: "Contact number"},
			{Name: "prcLicenseNumber", Label: "PRC license number"},
		},
	}
}

func pendingScreen() Screen {
	return Screen{
		ID:       PendingAffiliates,
		Title:    "Pending Registrations",
		Path:     "/api/admin/pending",
		Key:      "pendingAgents",
		Roles:    adminOnly,
		Editors:  adminOnly,
		Columns:  append(affiliateColumns(), Column{Title: "Registered", Width: 13, Value: date("createdAt")}),
		Filter:   withRegistered(affiliateFilter()),
		PageSize: 10,
		RowTitle: FullName,
		Custom: []RowAction{
			{Name: "approve", Label: "Approve", Key: "a", Confirm: "Approve registration of %s?"},
			{Name: "reject", Label: "Reject", Key: "r", Confirm: "Reject registration of %s?"},
		},
	}
}

func withRegistered(f tableview.Filter[rec]) tableview.Filter[rec] {
	f.Search = search(FullName, field("email"), AffiliateRole, date("createdAt"))
	f.Predicates = append(f.Predicates, tableview.DateRange("registered", "Registered", timeAt("createdAt")))
	return f
}

func licensedScreen() Screen {
	return Screen{
		ID:        LicensedAffiliates,
		Title:     "Licensed Affiliates",
		Path:      "/api/admin/licensed",
		Key:       "licensed",
		Roles:     adminOnly,
		Editors:   adminOnly,
		Columns:   affiliateColumns(),
		Filter:    affiliateFilter(),
		PageSize:  10,
		RowTitle:  FullName,
		CanDelete: true,
	}
}

func unlicensedScreen() Screen {
	return Screen{
		ID:        Unlicensed,
		Title:     "Unlicensed Affiliates",
		Path:      "/api/admin/unlicensed",
		Key:       "unlicensed",
		Roles:     adminOnly,
		Editors:   adminOnly,
		Columns:   affiliateColumns()[:4],
		Filter:    affiliateFilter(),
		PageSize:  10,
		RowTitle:  FullName,
		CanDelete: true,
		Custom: []RowAction{
			{Name: "license", Label: "Mark licensed", Key: "a", Confirm: "Mark %s as licensed?"},
		},
	}
}

func salesColumns() []Column {
	return []Column{
		{Title: "Client", Width: 22, Value: firstOf("clientName", "buyerName")},
		{Title: "Property", Width: 22, Value: field("propertyName")},
		{Title: "Agent", Width: 20, Value: firstOf("agentName", "agent.name")},
		{Title: "Reserved", Width: 13, Value: date("reservationDate")},
		{Title: "Amount", Width: 16, Value: money("totalPrice")},
		{Title: "Status", Width: 10, Value: field("status")},
	}
}

func salesFilter() tableview.Filter[rec] {
	return tableview.Filter[rec]{
		Search: search(firstOf("clientName", "buyerName"), field("propertyName"),
			firstOf("agentName", "agent.name"), date("reservationDate"), money("totalPrice")),
		Predicates: []tableview.Predicate[rec]{
			tableview.Equals("status", "Status", field("status"), salesStatuses...),
			tableview.Equals("financing", "Financing", field("financing"), financingOptions...),
			tableview.DateRange("reserved", "Reserved", timeAt("reservationDate")),
		},
	}
}

func salesForm() []actions.FormField {
	return []actions.FormField{
		{Name: "clientName", Label: "Client name", Required: true},
		{Name: "propertyName", Label: "Property", Required: true},
		{Name: "developer", Label: "Developer", Source: "developer.name"},
		{Name: "reservationDate", Label: "Reservation date", Kind: actions.FieldDate, Required: true},
		{Name: "totalPrice", Label: "Total contract price", Kind: actions.FieldNumber, Required: true, Min: actions.Bound(0)},
		{Name: "downPayment", Label: "Down payment", Kind: actions.FieldNumber, Min: actions.Bound(0)},
		{Name: "commissionRate", Label: "Commission rate (%)", Kind: actions.FieldNumber, Min: actions.Bound(0), Max: actions.Bound(100)},
		{Name: "financing", Label: "Financing", Kind: actions.FieldChoice, Options: financingOptions},
		{Name: "receipt", Label: "Reservation receipt", Kind: actions.FieldFile},
	}
}

func salesAdminScreen() Screen {
	return Screen{
		ID:        SalesAdmin,
		Title:     "Sales Encodings",
		Path:      "/api/admin/sales-encoding",
		Key:       "salesEncodingAdmin",
		Roles:     adminOnly,
		Editors:   adminOnly,
		Columns:   salesColumns(),
		Filter:    salesFilter(),
		PageSize:  10,
		RowTitle:  firstOf("clientName", "buyerName"),
		CanEdit:   true,
		CanDelete: true,
		Form:      salesForm(),
		Receipt:   true,
	}
}

func mySalesScreen() Screen {
	return Screen{
		ID:        MySales,
		Title:     "My Sales Encodings",
		Path:      "/api/sales-encoding",
		Key:       "salesEncoding",
		Roles:     affiliates,
		Editors:   affiliates,
		Columns:   salesColumns(),
		Filter:    salesFilter(),
		PageSize:  10,
		RowTitle:  firstOf("clientName", "buyerName"),
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
		Form:      salesForm(),
		Receipt:   true,
	}
}

func salesReportsScreen() Screen {
	return Screen{
		ID:    SalesReports,
		Title: "Sales Reports",
		Path:  "/api/sales-report",
		Key:   "salesReport",
		Roles: reporters,
		Columns: []Column{
			{Title: "Period", Width: 12, Value: field("period")},
			{Title: "Agent", Width: 22, Value: firstOf("agentName", "agent.name")},
			{Title: "Developer", Width: 20, Value: firstOf("developer.name", "developer")},
			{Title: "Units", Width: 6, Value: field("unitsSold")},
			{Title: "Total Sales", Width: 18, Value: money("totalSales")},
			{Title: "Commission", Width: 16, Value: money("commission")},
		},
		Filter: tableview.Filter[rec]{
			Search: search(field("period"), firstOf("agentName", "agent.name"),
				firstOf("developer.name", "developer"), money("totalSales")),
			Predicates: []tableview.Predicate[rec]{
				tableview.DateRange("date", "Date", timeAt("date")),
			},
		},
		PageSize: tableview.All,
		RowTitle: field("period"),
	}
}
