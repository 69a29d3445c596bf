package matomo

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params describes one tracking request as a closed set of typed fields.
// The zero value of every field means "absent": absent fields are omitted
// from the wire encoding entirely, never sent as empty strings.
//
// Field names follow the SDK's vocabulary; the wire parameter names of the
// Matomo HTTP tracking API (url, action_name, e_c, ma_id, ...) are fixed by
// that API and attached during encoding. The struct tags reuse the wire
// names so spool and bulk files are written in the API's own vocabulary.
// Numeric fields where zero is a meaningful wire value (event value, goal
// id, revenue, media positions, coordinates) are pointers so that "unset"
// and "zero" stay distinct.
//
// The reserved parameters idsite and rec are not representable here: the
// client injects them for every outgoing hit, and matching keys in Extra
// are ignored.
type Params struct {
	// Page / action
	URL              string `json:"url,omitempty" yaml:"url,omitempty"`
	ActionName       string `json:"action_name,omitempty" yaml:"action_name,omitempty"`
	Referrer         string `json:"urlref,omitempty" yaml:"urlref,omitempty"`
	PageViewID       string `json:"pv_id,omitempty" yaml:"pv_id,omitempty"`
	GenerationTimeMs int    `json:"gt_ms,omitempty" yaml:"gt_ms,omitempty"`
	Charset          string `json:"cs,omitempty" yaml:"cs,omitempty"`
	Link             string `json:"link,omitempty" yaml:"link,omitempty"`
	Download         string `json:"download,omitempty" yaml:"download,omitempty"`

	// Visitor identity and history
	VisitorID       string `json:"_id,omitempty" yaml:"_id,omitempty"`
	UserID          string `json:"uid,omitempty" yaml:"uid,omitempty"`
	ForcedVisitorID string `json:"cid,omitempty" yaml:"cid,omitempty"`
	NewVisit        bool   `json:"new_visit,omitempty" yaml:"new_visit,omitempty"`
	CampaignName    string `json:"_rcn,omitempty" yaml:"_rcn,omitempty"`
	CampaignKeyword string `json:"_rck,omitempty" yaml:"_rck,omitempty"`
	VisitCount      int    `json:"_idvc,omitempty" yaml:"_idvc,omitempty"`
	PreviousVisitTS int64  `json:"_viewts,omitempty" yaml:"_viewts,omitempty"`
	FirstVisitTS    int64  `json:"_idts,omitempty" yaml:"_idts,omitempty"`
	Resolution      string `json:"res,omitempty" yaml:"res,omitempty"`
	UserAgent       string `json:"ua,omitempty" yaml:"ua,omitempty"`
	Language        string `json:"lang,omitempty" yaml:"lang,omitempty"`
	LocalHour       *int   `json:"h,omitempty" yaml:"h,omitempty"`
	LocalMinute     *int   `json:"m,omitempty" yaml:"m,omitempty"`
	LocalSecond     *int   `json:"s,omitempty" yaml:"s,omitempty"`

	// Hit behavior
	CustomAction bool   `json:"ca,omitempty" yaml:"ca,omitempty"`
	Ping         bool   `json:"ping,omitempty" yaml:"ping,omitempty"`
	Bots         bool   `json:"bots,omitempty" yaml:"bots,omitempty"`
	SendImage    *bool  `json:"send_image,omitempty" yaml:"send_image,omitempty"`
	APIVersion   int    `json:"apiv,omitempty" yaml:"apiv,omitempty"`
	Rand         string `json:"rand,omitempty" yaml:"rand,omitempty"`

	// Event tracking
	EventCategory string   `json:"e_c,omitempty" yaml:"e_c,omitempty"`
	EventAction   string   `json:"e_a,omitempty" yaml:"e_a,omitempty"`
	EventName     string   `json:"e_n,omitempty" yaml:"e_n,omitempty"`
	EventValue    *float64 `json:"e_v,omitempty" yaml:"e_v,omitempty"`

	// Content tracking
	ContentName        string `json:"c_n,omitempty" yaml:"c_n,omitempty"`
	ContentPiece       string `json:"c_p,omitempty" yaml:"c_p,omitempty"`
	ContentTarget      string `json:"c_t,omitempty" yaml:"c_t,omitempty"`
	ContentInteraction string `json:"c_i,omitempty" yaml:"c_i,omitempty"`

	// Site search
	Search         string `json:"search,omitempty" yaml:"search,omitempty"`
	SearchCategory string `json:"search_cat,omitempty" yaml:"search_cat,omitempty"`
	SearchCount    *int   `json:"search_count,omitempty" yaml:"search_count,omitempty"`

	// Goals and e-commerce
	GoalID      *int     `json:"idgoal,omitempty" yaml:"idgoal,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	OrderID     string   `json:"ec_id,omitempty" yaml:"ec_id,omitempty"`
	Items       string   `json:"ec_items,omitempty" yaml:"ec_items,omitempty"`
	Subtotal    *float64 `json:"ec_st,omitempty" yaml:"ec_st,omitempty"`
	Tax         *float64 `json:"ec_tx,omitempty" yaml:"ec_tx,omitempty"`
	Shipping    *float64 `json:"ec_sh,omitempty" yaml:"ec_sh,omitempty"`
	Discount    *float64 `json:"ec_dt,omitempty" yaml:"ec_dt,omitempty"`
	LastOrderTS int64    `json:"_ects,omitempty" yaml:"_ects,omitempty"`

	// Media analytics
	MediaID         string `json:"ma_id,omitempty" yaml:"ma_id,omitempty"`
	MediaTitle      string `json:"ma_ti,omitempty" yaml:"ma_ti,omitempty"`
	MediaResource   string `json:"ma_re,omitempty" yaml:"ma_re,omitempty"`
	MediaType       string `json:"ma_mt,omitempty" yaml:"ma_mt,omitempty"`
	MediaPlayer     string `json:"ma_pn,omitempty" yaml:"ma_pn,omitempty"`
	MediaTimePlayed *int   `json:"ma_st,omitempty" yaml:"ma_st,omitempty"`
	MediaLength     *int   `json:"ma_le,omitempty" yaml:"ma_le,omitempty"`
	MediaPosition   *int   `json:"ma_ps,omitempty" yaml:"ma_ps,omitempty"`
	MediaTimeToPlay *int   `json:"ma_ttp,omitempty" yaml:"ma_ttp,omitempty"`
	MediaWidth      int    `json:"ma_w,omitempty" yaml:"ma_w,omitempty"`
	MediaHeight     int    `json:"ma_h,omitempty" yaml:"ma_h,omitempty"`
	MediaFullscreen bool   `json:"ma_fs,omitempty" yaml:"ma_fs,omitempty"`
	MediaSegments   string `json:"ma_se,omitempty" yaml:"ma_se,omitempty"`

	// Geo and authenticated overrides (honored server-side with token auth)
	ClientIP       string   `json:"cip,omitempty" yaml:"cip,omitempty"`
	ClientDatetime string   `json:"cdt,omitempty" yaml:"cdt,omitempty"`
	Country        string   `json:"country,omitempty" yaml:"country,omitempty"`
	Region         string   `json:"region,omitempty" yaml:"region,omitempty"`
	City           string   `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude       *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Longitude      *float64 `json:"long,omitempty" yaml:"long,omitempty"`

	// Dimensions maps a custom dimension index to its value (dimension<N>).
	Dimensions map[int]string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// Extra passes through parameters the struct does not enumerate.
	// Keys here are sent verbatim, except the reserved idsite/rec.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// reservedKeys are injected by the client and cannot be overridden.
var reservedKeys = map[string]bool{
	"idsite": true,
	"rec":    true,
}

// pair is one wire parameter. Order matters: the tracking API's bulk format
// is a list of pre-encoded fragments, and the documented layout puts the
// action parameters first and idsite/rec last.
type pair struct {
	key   string
	value string
}

// pairs returns the wire parameters of p in declaration order, skipping
// absent fields. It never mutates p.
func (p Params) pairs() []pair {
	var out []pair

	add := func(key, value string) {
		if value != "" {
			out = append(out, pair{key, value})
		}
	}
	addInt := func(key string, value int) {
		if value != 0 {
			out = append(out, pair{key, strconv.Itoa(value)})
		}
	}
	addInt64 := func(key string, value int64) {
		if value != 0 {
			out = append(out, pair{key, strconv.FormatInt(value, 10)})
		}
	}
	addIntPtr := func(key string, value *int) {
		if value != nil {
			out = append(out, pair{key, strconv.Itoa(*value)})
		}
	}
	addFloatPtr := func(key string, value *float64) {
		if value != nil {
			out = append(out, pair{key, strconv.FormatFloat(*value, 'f', -1, 64)})
		}
	}
	addBool := func(key string, value bool) {
		if value {
			out = append(out, pair{key, "1"})
		}
	}

	add("url", p.URL)
	add("action_name", p.ActionName)
	add("urlref", p.Referrer)
	add("pv_id", p.PageViewID)
	addInt("gt_ms", p.GenerationTimeMs)
	add("cs", p.Charset)
	add("link", p.Link)
	add("download", p.Download)

	add("_id", p.VisitorID)
	add("uid", p.UserID)
	add("cid", p.ForcedVisitorID)
	addBool("new_visit", p.NewVisit)
	add("_rcn", p.CampaignName)
	add("_rck", p.CampaignKeyword)
	addInt("_idvc", p.VisitCount)
	addInt64("_viewts", p.PreviousVisitTS)
	addInt64("_idts", p.FirstVisitTS)
	add("res", p.Resolution)
	add("ua", p.UserAgent)
	add("lang", p.Language)
	addIntPtr("h", p.LocalHour)
	addIntPtr("m", p.LocalMinute)
	addIntPtr("s", p.LocalSecond)

	addBool("ca", p.CustomAction)
	addBool("ping", p.Ping)
	addBool("bots", p.Bots)
	if p.SendImage != nil {
		if *p.SendImage {
			out = append(out, pair{"send_image", "1"})
		} else {
			out = append(out, pair{"send_image", "0"})
		}
	}
	addInt("apiv", p.APIVersion)
	add("rand", p.Rand)

	add("e_c", p.EventCategory)
	add("e_a", p.EventAction)
	add("e_n", p.EventName)
	addFloatPtr("e_v", p.EventValue)

	add("c_n", p.ContentName)
	add("c_p", p.ContentPiece)
	add("c_t", p.ContentTarget)
	add("c_i", p.ContentInteraction)

	add("search", p.Search)
	add("search_cat", p.SearchCategory)
	addIntPtr("search_count", p.SearchCount)

	addIntPtr("idgoal", p.GoalID)
	addFloatPtr("revenue", p.Revenue)
	add("ec_id", p.OrderID)
	add("ec_items", p.Items)
	addFloatPtr("ec_st", p.Subtotal)
	addFloatPtr("ec_tx", p.Tax)
	addFloatPtr("ec_sh", p.Shipping)
	addFloatPtr("ec_dt", p.Discount)
	addInt64("_ects", p.LastOrderTS)

	add("ma_id", p.MediaID)
	add("ma_ti", p.MediaTitle)
	add("ma_re", p.MediaResource)
	add("ma_mt", p.MediaType)
	add("ma_pn", p.MediaPlayer)
	addIntPtr("ma_st", p.MediaTimePlayed)
	addIntPtr("ma_le", p.MediaLength)
	addIntPtr("ma_ps", p.MediaPosition)
	addIntPtr("ma_ttp", p.MediaTimeToPlay)
	addInt("ma_w", p.MediaWidth)
	addInt("ma_h", p.MediaHeight)
	addBool("ma_fs", p.MediaFullscreen)
	add("ma_se", p.MediaSegments)

	add("cip", p.ClientIP)
	add("cdt", p.ClientDatetime)
	add("country", p.Country)
	add("region", p.Region)
	add("city", p.City)
	addFloatPtr("lat", p.Latitude)
	addFloatPtr("long", p.Longitude)

	if len(p.Dimensions) > 0 {
		indexes := make([]int, 0, len(p.Dimensions))
		for idx := range p.Dimensions {
			indexes = append(indexes, idx)
		}
		sort.Ints(indexes)
		for _, idx := range indexes {
			add(fmt.Sprintf("dimension%d", idx), p.Dimensions[idx])
		}
	}

	if len(p.Extra) > 0 {
		keys := make([]string, 0, len(p.Extra))
		for key := range p.Extra {
			if reservedKeys[key] {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			add(key, p.Extra[key])
		}
	}

	return out
}

// encodePairs serializes pairs into a percent-encoded query string. Pair
// order is preserved, which url.Values.Encode (sorted keys) cannot do.
func encodePairs(pairs []pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
