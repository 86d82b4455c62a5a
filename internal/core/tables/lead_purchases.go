package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var leadPurchases = Def{
	Table: core.TableLeadPurchases,
	Label: "Lead Purchases",
	Fields: []core.FieldSpec{
		required(field("vendor_id", core.FieldInt, "311")),
		required(field("lead_phone", core.FieldText, "+91 98700 00004")),
		field("lead_name", core.FieldNullableText, "Kabir Singh"),
		field("amount", core.FieldFloat, "499"),
		status("status", core.StatusPurchased, core.StatusPurchased),
		field("purchased_at", core.FieldTimestamp, "06-07-2024 09:15"),
	},
	Map: mapper(mapLeadPurchase),
}

type leadPurchase struct {
	VendorID    pgtype.Int8
	LeadPhone   pgtype.Text
	LeadName    pgtype.Text
	Amount      pgtype.Float8
	Status      pgtype.Text
	PurchasedAt pgtype.Timestamp
}

func mapLeadPurchase(r core.Row) (leadPurchase, error) {
	vendorID, err := core.RequireInt(r, "vendor_id")
	if err != nil {
		return leadPurchase{}, err
	}
	phone, err := core.RequireText(r, "lead_phone")
	if err != nil {
		return leadPurchase{}, err
	}
	return leadPurchase{
		VendorID:    vendorID,
		LeadPhone:   core.ToPgString(NormalizePhone(phone.String)),
		LeadName:    core.ToPgText(r.Get("lead_name")),
		Amount:      core.ToPgFloat8(r.Get("amount")),
		Status:      core.ToPgString(core.NormalizeStatus(r.Get("status"), core.StatusPurchased)),
		PurchasedAt: core.ToPgTimestamp(r.Get("purchased_at")),
	}, nil
}

func (p leadPurchase) values() []any {
	return []any{p.VendorID, p.LeadPhone, p.LeadName, p.Amount, p.Status, p.PurchasedAt}
}
