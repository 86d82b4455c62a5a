package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// Custom buy-leads are sold to vendors, so they start as not-purchased.
var customBuyLeads = Def{
	Table: core.TableCustomBuyLeads,
	Label: "Custom Buy Leads",
	Fields: []core.FieldSpec{
		required(field("name", core.FieldText, "Kabir Singh")),
		required(field("phone", core.FieldText, "+91 98700 00004")),
		field("email", core.FieldNullableText, "kabir@example.com"),
		field("city", core.FieldNullableText, "Goa"),
		field("wedding_date", core.FieldDate, "2025-11-22"),
		field("services", core.FieldNullableText, "photography; catering"),
		field("budget", core.FieldFloat, "800000"),
		field("price", core.FieldFloat, "499"),
		status("status", core.StatusNotPurchased, core.StatusNotPurchased),
		field("created_at", core.FieldTimestamp, "05-07-2024 11:00"),
	},
	Map: mapper(mapCustomBuyLead),
}

type customBuyLead struct {
	Name        pgtype.Text
	Phone       pgtype.Text
	Email       pgtype.Text
	City        pgtype.Text
	WeddingDate pgtype.Date
	Services    pgtype.Text
	Budget      pgtype.Float8
	Price       pgtype.Float8
	Status      pgtype.Text
	CreatedAt   pgtype.Timestamp
}

func mapCustomBuyLead(r core.Row) (customBuyLead, error) {
	name, err := core.RequireText(r, "name")
	if err != nil {
		return customBuyLead{}, err
	}
	phone, err := core.RequireText(r, "phone")
	if err != nil {
		return customBuyLead{}, err
	}
	return customBuyLead{
		Name:        name,
		Phone:       core.ToPgString(NormalizePhone(phone.String)),
		Email:       core.ToPgText(NormalizeEmail(r.Get("email"))),
		City:        core.ToPgText(r.Get("city")),
		WeddingDate: core.ToPgDate(r.Get("wedding_date")),
		Services:    core.ToPgText(r.Get("services")),
		Budget:      core.ToPgFloat8(r.Get("budget")),
		Price:       core.ToPgFloat8(r.Get("price")),
		Status:      core.ToPgString(core.NormalizeStatus(r.Get("status"), core.StatusNotPurchased)),
		CreatedAt:   core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (c customBuyLead) values() []any {
	return []any{c.Name, c.Phone, c.Email, c.City, c.WeddingDate, c.Services, c.Budget, c.Price, c.Status, c.CreatedAt}
}
