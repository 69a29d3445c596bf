package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fieldDoc documents one tracking parameter the SDK's Params struct
// enumerates. The wire names are fixed by the Matomo HTTP tracking API.
type fieldDoc struct {
	wire string
	name string
	desc string
}

var fieldGroups = []struct {
	group  string
	fields []fieldDoc
}{
	{"page", []fieldDoc{
		{"url", "URL", "full URL of the tracked action (required for single hits)"},
		{"action_name", "ActionName", "page title"},
		{"urlref", "Referrer", "referrer URL"},
		{"pv_id", "PageViewID", "page view id shared by hits of one view"},
		{"gt_ms", "GenerationTimeMs", "server-side generation time"},
		{"link", "Link", "outlink URL"},
		{"download", "Download", "download URL"},
	}},
	{"visitor", []fieldDoc{
		{"_id", "VisitorID", "16-char hex visitor id"},
		{"uid", "UserID", "user id"},
		{"cid", "ForcedVisitorID", "forced visitor id (needs token auth)"},
		{"new_visit", "NewVisit", "force a new visit"},
		{"_rcn", "CampaignName", "campaign name"},
		{"_rck", "CampaignKeyword", "campaign keyword"},
		{"res", "Resolution", "screen resolution"},
		{"ua", "UserAgent", "visitor user agent"},
		{"lang", "Language", "visitor language"},
	}},
	{"event", []fieldDoc{
		{"e_c", "EventCategory", "event category (required for events)"},
		{"e_a", "EventAction", "event action (required for events)"},
		{"e_n", "EventName", "event name"},
		{"e_v", "EventValue", "event value"},
	}},
	{"content", []fieldDoc{
		{"c_n", "ContentName", "content name (required for content hits)"},
		{"c_p", "ContentPiece", "content piece (required for content hits)"},
		{"c_t", "ContentTarget", "content target"},
		{"c_i", "ContentInteraction", "content interaction"},
	}},
	{"search", []fieldDoc{
		{"search", "Search", "site search keyword"},
		{"search_cat", "SearchCategory", "site search category"},
		{"search_count", "SearchCount", "number of search results"},
	}},
	{"ecommerce", []fieldDoc{
		{"idgoal", "GoalID", "goal id (0 for ecommerce orders)"},
		{"revenue", "Revenue", "goal or order revenue"},
		{"ec_id", "OrderID", "order id"},
		{"ec_items", "Items", "order items as JSON"},
		{"ec_st", "Subtotal", "order subtotal"},
		{"ec_tx", "Tax", "order tax"},
		{"ec_sh", "Shipping", "order shipping"},
		{"ec_dt", "Discount", "order discount"},
	}},
	{"media", []fieldDoc{
		{"ma_id", "MediaID", "media session id"},
		{"ma_ti", "MediaTitle", "media title"},
		{"ma_re", "MediaResource", "media resource URL"},
		{"ma_mt", "MediaType", "video or audio"},
		{"ma_pn", "MediaPlayer", "player name"},
		{"ma_st", "MediaTimePlayed", "seconds spent playing"},
		{"ma_le", "MediaLength", "media length in seconds"},
		{"ma_ps", "MediaPosition", "playback position"},
	}},
	{"geo", []fieldDoc{
		{"cip", "ClientIP", "visitor IP override (needs token auth)"},
		{"cdt", "ClientDatetime", "hit datetime override (needs token auth)"},
		{"country", "Country", "country override"},
		{"region", "Region", "region override"},
		{"city", "City", "city override"},
		{"lat", "Latitude", "latitude override"},
		{"long", "Longitude", "longitude override"},
	}},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the recognized tracking fields",
	Long: `List the tracking parameters the SDK enumerates, grouped by concern,
with their wire names as used in bulk files and the Params struct
field that carries them. Parameters outside this list can still be
sent through the extra map.`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	title := cases.Title(language.English)
	out := cmd.OutOrStdout()

	for i, g := range fieldGroups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", title.String(g.group))
		for _, f := range g.fields {
			fmt.Fprintf(out, "  %-14s %-18s %s\n", f.wire, f.name, f.desc)
		}
	}
	return nil
}
