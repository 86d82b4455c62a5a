package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var clientSubscriptions = Def{
	Table: core.TableClientSubs,
	Label: "Client Subscriptions",
	Fields: []core.FieldSpec{
		required(field("client_name", core.FieldText, "Ishita Rao")),
		required(field("plan", core.FieldText, "gold")),
		field("phone", core.FieldNullableText, "+91 98300 00006"),
		field("email", core.FieldNullableText, "ishita@example.com"),
		field("amount", core.FieldFloat, "2999"),
		field("is_active", core.FieldBool, "1"),
		field("starts_at", core.FieldDate, "01-09-2024"),
		field("ends_at", core.FieldDate, "01-09-2025"),
		field("created_at", core.FieldTimestamp, "01-09-2024 12:00"),
	},
	Map: mapper(mapClientSubscription),
}

type clientSubscription struct {
	ClientName pgtype.Text
	Plan       pgtype.Text
	Phone      pgtype.Text
	Email      pgtype.Text
	Amount     pgtype.Float8
	IsActive   pgtype.Bool
	StartsAt   pgtype.Date
	EndsAt     pgtype.Date
	CreatedAt  pgtype.Timestamp
}

func mapClientSubscription(r core.Row) (clientSubscription, error) {
	name, err := core.RequireText(r, "client_name")
	if err != nil {
		return clientSubscription{}, err
	}
	plan, err := core.RequireText(r, "plan")
	if err != nil {
		return clientSubscription{}, err
	}
	return clientSubscription{
		ClientName: name,
		Plan:       plan,
		Phone:      core.ToPgText(NormalizePhone(r.Get("phone"))),
		Email:      core.ToPgText(NormalizeEmail(r.Get("email"))),
		Amount:     core.ToPgFloat8(r.Get("amount")),
		IsActive:   core.ToPgBool(r.Get("is_active")),
		StartsAt:   core.ToPgDate(r.Get("starts_at")),
		EndsAt:     core.ToPgDate(r.Get("ends_at")),
		CreatedAt:  core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (s clientSubscription) values() []any {
	return []any{s.ClientName, s.Plan, s.Phone, s.Email, s.Amount, s.IsActive, s.StartsAt, s.EndsAt, s.CreatedAt}
}

var vendorSubscriptions = Def{
	Table: core.TableVendorSubs,
	Label: "Vendor Subscriptions",
	Fields: []core.FieldSpec{
		required(field("vendor_id", core.FieldInt, "311")),
		required(field("plan", core.FieldText, "premium")),
		field("amount", core.FieldFloat, "9999"),
		field("is_active", core.FieldBool, "yes"),
		field("starts_at", core.FieldDate, "15-03-2024"),
		field("ends_at", core.FieldDate, "15-03-2025"),
		field("created_at", core.FieldTimestamp, "15-03-2024 10:00"),
	},
	Map: mapper(mapVendorSubscription),
}

type vendorSubscription struct {
	VendorID  pgtype.Int8
	Plan      pgtype.Text
	Amount    pgtype.Float8
	IsActive  pgtype.Bool
	StartsAt  pgtype.Date
	EndsAt    pgtype.Date
	CreatedAt pgtype.Timestamp
}

func mapVendorSubscription(r core.Row) (vendorSubscription, error) {
	vendorID, err := core.RequireInt(r, "vendor_id")
	if err != nil {
		return vendorSubscription{}, err
	}
	plan, err := core.RequireText(r, "plan")
	if err != nil {
		return vendorSubscription{}, err
	}
	return vendorSubscription{
		VendorID:  vendorID,
		Plan:      plan,
		Amount:    core.ToPgFloat8(r.Get("amount")),
		IsActive:  core.ToPgBool(r.Get("is_active")),
		StartsAt:  core.ToPgDate(r.Get("starts_at")),
		EndsAt:    core.ToPgDate(r.Get("ends_at")),
		CreatedAt: core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (s vendorSubscription) values() []any {
	return []any{s.VendorID, s.Plan, s.Amount, s.IsActive, s.StartsAt, s.EndsAt, s.CreatedAt}
}
