package core

import (
	"strings"
	"time"
)

// Table identifies one of the fixed destination tables an import can target.
type Table string

const (
	TableTeam           Table = "team_members"
	TableVendors        Table = "vendors"
	TableLeads          Table = "leads"
	TableCustomBuyLeads Table = "custom_buy_leads"
	TableChatLeads      Table = "chat_form_leads"
	TableLeadPurchases  Table = "lead_purchases"
	TableClientSubs     Table = "client_subscriptions"
	TableVendorSubs     Table = "vendor_subscriptions"
	TableAppDownloads   Table = "app_download_links"
)

var allTables = []Table{
	TableTeam,
	TableVendors,
	TableLeads,
	TableCustomBuyLeads,
	TableChatLeads,
	TableLeadPurchases,
	TableClientSubs,
	TableVendorSubs,
	TableAppDownloads,
}

// Tables returns every importable table in display order.
func Tables() []Table {
	out := make([]Table, len(allTables))
	copy(out, allTables)
	return out
}

// ParseTable resolves a wire name to a Table.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseTable(s string) (Table, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range allTables {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (t Table) String() string { return string(t) }

// MaxRowErrors caps the diagnostic messages collected by one importer call.
const MaxRowErrors = 10

// ImportRequest is the input of a single importer call.
type ImportRequest struct {
	Table      string `json:"table"`
	CSVContent string `json:"csvContent"`
	BatchSize  int    `json:"batchSize,omitempty"`
	// LineOffset is added to every line number in the result's messages, so
	// a chunk of a larger file reports lines of that file. Negative is zero.
	LineOffset int `json:"lineOffset,omitempty"`
}

// ImportResult is the outcome of a single importer call.
// Errors holds at most MaxRowErrors messages; counts are never capped.
type ImportResult struct {
	Table   string   `json:"table"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// AddError appends msg while the result holds fewer than MaxRowErrors messages.
func (r *ImportResult) AddError(msg string) {
	if len(r.Errors) < MaxRowErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// ImportRun is one recorded importer call, kept for the history view.
type ImportRun struct {
	ID         string    `json:"id"`
	Table      string    `json:"table"`
	Rows       int       `json:"rows"`
	Success    int       `json:"success"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors"`
	Source     string    `json:"source,omitempty"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}
