package remotetest

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/omarluq/holicache/internal/remote"
)

// reserved query parameters that are not column filters.
var reserved = map[string]bool{
	"select": true, "order": true, "offset": true, "limit": true, "or": true, "on_conflict": true,
}

func filterRows(rows []remote.Row, q url.Values) []remote.Row {
	out := make([]remote.Row, 0, len(rows))
	for _, row := range rows {
		if matches(row, q) {
			out = append(out, row)
		}
	}
	return out
}

func matches(row remote.Row, q url.Values) bool {
	for col, values := range q {
		if reserved[col] {
			continue
		}
		actual, ok := column(row, col)
		if !ok {
			return false
		}
		for _, expr := range values {
			if !matchExpr(actual, expr) {
				return false
			}
		}
	}
	if search := q.Get("or"); search != "" && !matchOr(row, search) {
		return false
	}
	return true
}

func matchExpr(actual, expr string) bool {
	switch {
	case strings.HasPrefix(expr, "eq."):
		return actual == strings.TrimPrefix(expr, "eq.")
	case strings.HasPrefix(expr, "in.(") && strings.HasSuffix(expr, ")"):
		list := strings.TrimSuffix(strings.TrimPrefix(expr, "in.("), ")")
		return slices.Contains(splitList(list), actual)
	case strings.HasPrefix(expr, "ilike."):
		return ilike(actual, strings.TrimPrefix(expr, "ilike."))
	default:
		return false
	}
}

// matchOr evaluates "(col.ilike.pattern,col.ilike.pattern)".
func matchOr(row remote.Row, expr string) bool {
	expr = strings.TrimSuffix(strings.TrimPrefix(expr, "("), ")")
	for _, clause := range strings.Split(expr, ",") {
		col, rest, ok := strings.Cut(clause, ".")
		if !ok {
			continue
		}
		actual, ok := column(row, col)
		if ok && matchExpr(actual, rest) {
			return true
		}
	}
	return false
}

func ilike(actual, pattern string) bool {
	needle := strings.ToLower(strings.Trim(pattern, "*%"))
	return strings.Contains(strings.ToLower(actual), needle)
}

// splitList splits an in.() list, honoring double-quoted items.
func splitList(list string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)
	for _, r := range list {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

func column(row remote.Row, col string) (string, bool) {
	switch col {
	case "id":
		return row.ID, true
	case "holiday_id":
		return row.HolidayID, true
	case "holiday_name":
		return row.HolidayName, true
	case "country_name":
		return row.CountryName, true
	case "locale":
		return row.Locale, true
	case "description":
		return row.Description, true
	case "is_manual":
		return strconv.FormatBool(row.IsManual), true
	default:
		return "", false
	}
}
