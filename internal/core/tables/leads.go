package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var leads = Def{
	Table: core.TableLeads,
	Label: "Leads",
	Fields: []core.FieldSpec{
		required(field("name", core.FieldText, "Ananya Iyer")),
		required(field("phone", core.FieldText, "+91 99000 00003")),
		field("email", core.FieldNullableText, "ananya@example.com"),
		field("city", core.FieldNullableText, "Udaipur"),
		field("wedding_date", core.FieldDate, "14-02-2025"),
		field("budget", core.FieldFloat, "1500000"),
		field("source", core.FieldNullableText, "instagram"),
		status("status", core.StatusNew, core.StatusContacted),
		field("assigned_to", core.FieldInt, "1024"),
		field("notes", core.FieldNullableText, "Prefers a palace venue"),
		field("created_at", core.FieldTimestamp, "20-06-2024 18:45"),
	},
	Map: mapper(mapLead),
}

type lead struct {
	Name        pgtype.Text
	Phone       pgtype.Text
	Email       pgtype.Text
	City        pgtype.Text
	WeddingDate pgtype.Date
	Budget      pgtype.Float8
	Source      pgtype.Text
	Status      pgtype.Text
	AssignedTo  pgtype.Int8
	Notes       pgtype.Text
	CreatedAt   pgtype.Timestamp
}

func mapLead(r core.Row) (lead, error) {
	name, err := core.RequireText(r, "name")
	if err != nil {
		return lead{}, err
	}
	phone, err := core.RequireText(r, "phone")
	if err != nil {
		return lead{}, err
	}
	return lead{
		Name:        name,
		Phone:       core.ToPgString(NormalizePhone(phone.String)),
		Email:       core.ToPgText(NormalizeEmail(r.Get("email"))),
		City:        core.ToPgText(r.Get("city")),
		WeddingDate: core.ToPgDate(r.Get("wedding_date")),
		Budget:      core.ToPgFloat8(r.Get("budget")),
		Source:      core.ToPgText(r.Get("source")),
		Status:      core.ToPgString(core.NormalizeStatus(r.Get("status"), core.StatusNew)),
		AssignedTo:  core.ToPgInt8(r.Get("assigned_to")),
		Notes:       core.ToPgText(r.Get("notes")),
		CreatedAt:   core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (l lead) values() []any {
	return []any{l.Name, l.Phone, l.Email, l.City, l.WeddingDate, l.Budget, l.Source, l.Status, l.AssignedTo, l.Notes, l.CreatedAt}
}
