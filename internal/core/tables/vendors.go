package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var vendors = Def{
	Table: core.TableVendors,
	Label: "Vendors",
	Fields: []core.FieldSpec{
		renamed(field("id", core.FieldInt, "311"), "legacy_id"),
		required(field("name", core.FieldText, "Rohan Mehta")),
		field("business_name", core.FieldNullableText, "Mehta Decor"),
		field("category", core.FieldNullableText, "decorator"),
		field("email", core.FieldNullableText, "rohan@mehtadecor.in"),
		field("phone", core.FieldNullableText, "+91 98200 00002"),
		field("city", core.FieldNullableText, "Jaipur"),
		field("rating", core.FieldFloat, "4.6"),
		field("is_verified", core.FieldBool, "true"),
		field("created_at", core.FieldTimestamp, "02-03-2023 09:00"),
	},
	Map: mapper(mapVendor),
}

type vendor struct {
	LegacyID     pgtype.Int8
	Name         pgtype.Text
	BusinessName pgtype.Text
	Category     pgtype.Text
	Email        pgtype.Text
	Phone        pgtype.Text
	City         pgtype.Text
	Rating       pgtype.Float8
	IsVerified   pgtype.Bool
	CreatedAt    pgtype.Timestamp
}

func mapVendor(r core.Row) (vendor, error) {
	name, err := core.RequireText(r, "name")
	if err != nil {
		return vendor{}, err
	}
	return vendor{
		LegacyID:     core.ToPgInt8(r.Get("id")),
		Name:         name,
		BusinessName: core.ToPgText(r.Get("business_name")),
		Category:     core.ToPgText(r.Get("category")),
		Email:        core.ToPgText(NormalizeEmail(r.Get("email"))),
		Phone:        core.ToPgText(NormalizePhone(r.Get("phone"))),
		City:         core.ToPgText(r.Get("city")),
		Rating:       core.ToPgFloat8(r.Get("rating")),
		IsVerified:   core.ToPgBool(r.Get("is_verified")),
		CreatedAt:    core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (v vendor) values() []any {
	return []any{v.LegacyID, v.Name, v.BusinessName, v.Category, v.Email, v.Phone, v.City, v.Rating, v.IsVerified, v.CreatedAt}
}
