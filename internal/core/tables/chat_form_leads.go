package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var chatFormLeads = Def{
	Table: core.TableChatLeads,
	Label: "Chat Form Leads",
	Fields: []core.FieldSpec{
		required(field("name", core.FieldText, "Meera Nair")),
		field("phone", core.FieldNullableText, "+91 97400 00005"),
		field("email", core.FieldNullableText, "meera@example.com"),
		field("city", core.FieldNullableText, "Kochi"),
		field("wedding_date", core.FieldDate, "10-01-2026"),
		field("message", core.FieldNullableText, "Looking for a mehendi artist"),
		status("status", core.StatusNew, core.StatusNew),
		field("created_at", core.FieldTimestamp, "01-08-2024 21:10"),
	},
	Map: mapper(mapChatFormLead),
}

type chatFormLead struct {
	Name        pgtype.Text
	Phone       pgtype.Text
	Email       pgtype.Text
	City        pgtype.Text
	WeddingDate pgtype.Date
	Message     pgtype.Text
	Status      pgtype.Text
	CreatedAt   pgtype.Timestamp
}

func mapChatFormLead(r core.Row) (chatFormLead, error) {
	name, err := core.RequireText(r, "name")
	if err != nil {
		return chatFormLead{}, err
	}
	return chatFormLead{
		Name:        name,
		Phone:       core.ToPgText(NormalizePhone(r.Get("phone"))),
		Email:       core.ToPgText(NormalizeEmail(r.Get("email"))),
		City:        core.ToPgText(r.Get("city")),
		WeddingDate: core.ToPgDate(r.Get("wedding_date")),
		Message:     core.ToPgText(r.Get("message")),
		Status:      core.ToPgString(core.NormalizeStatus(r.Get("status"), core.StatusNew)),
		CreatedAt:   core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (c chatFormLead) values() []any {
	return []any{c.Name, c.Phone, c.Email, c.City, c.WeddingDate, c.Message, c.Status, c.CreatedAt}
}
