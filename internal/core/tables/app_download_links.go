package tables

import (
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

var appDownloadLinks = Def{
	Table: core.TableAppDownloads,
	Label: "App Download Links",
	Fields: []core.FieldSpec{
		required(field("phone", core.FieldText, "+91 98100 00007")),
		field("name", core.FieldNullableText, "Vivek Joshi"),
		field("platform", core.FieldNullableText, "android"),
		field("link_sent", core.FieldBool, "true"),
		field("sent_at", core.FieldTimestamp, "12-08-2024 16:20"),
		field("created_at", core.FieldTimestamp, "12-08-2024 16:19"),
	},
	Map: mapper(mapAppDownloadLink),
}

type appDownloadLink struct {
	Phone     pgtype.Text
	Name      pgtype.Text
	Platform  pgtype.Text
	LinkSent  pgtype.Bool
	SentAt    pgtype.Timestamp
	CreatedAt pgtype.Timestamp
}

func mapAppDownloadLink(r core.Row) (appDownloadLink, error) {
	phone, err := core.RequireText(r, "phone")
	if err != nil {
		return appDownloadLink{}, err
	}
	return appDownloadLink{
		Phone:     core.ToPgString(NormalizePhone(phone.String)),
		Name:      core.ToPgText(r.Get("name")),
		Platform:  core.ToPgText(strings.ToLower(r.Get("platform"))),
		LinkSent:  core.ToPgBool(r.Get("link_sent")),
		SentAt:    core.ToPgTimestamp(r.Get("sent_at")),
		CreatedAt: core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (a appDownloadLink) values() []any {
	return []any{a.Phone, a.Name, a.Platform, a.LinkSent, a.SentAt, a.CreatedAt}
}
