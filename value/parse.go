package value

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/cyp0633/libical/contentline"
)

// Context carries what a parser needs besides the raw text: the property
// parameters (TZID, ENCODING) and the timezone resolver.
type Context struct {
	Params   contentline.Params
	Resolver Resolver
}

func wrap[T Value](v T, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Parse parses raw as a single value of type t.
func Parse(t Type, raw string, ctx Context) (Value, error) {
	tzid := ctx.Params.Value("TZID")
	switch t {
	case TypeBoolean:
		return wrap(ParseBoolean(raw))
	case TypeInteger:
		return wrap(ParseInteger(raw))
	case TypeFloat:
		return wrap(ParseFloat(raw))
	case TypeText:
		s, err := contentline.UnescapeText(raw)
		if err != nil {
			return nil, typeErr(TypeText, raw, "%v", err)
		}
		return Text(s), nil
	case TypeBinary:
		return wrap(ParseBinary(raw, ctx.Params.Value("ENCODING")))
	case TypeCalAddress:
		return wrap(ParseCalAddress(raw))
	case TypeURI:
		return wrap(ParseURI(raw))
	case TypeDate:
		return wrap(ParseDate(raw))
	case TypeDateTime:
		return wrap(ParseDateTime(raw, tzid, ctx.Resolver))
	case TypeTime:
		return wrap(ParseTime(raw, tzid, ctx.Resolver))
	case TypeDuration:
		return wrap(ParseDuration(raw))
	case TypePeriod:
		return wrap(ParsePeriod(raw, tzid, ctx.Resolver))
	case TypeUTCOffset:
		return wrap(ParseUTCOffset(raw))
	case TypeRecur:
		return wrap(ParseRecur(raw))
	}
	return nil, typeErr(t, raw, "unsupported value type")
}

// ParseList parses a comma-separated list of t. TEXT lists split only on
// unescaped commas.
func ParseList(t Type, raw string, ctx Context) (List, error) {
	var parts []string
	if t == TypeText {
		parts = contentline.SplitText(raw)
	} else {
		parts = strings.Split(raw, ",")
	}
	items := make([]Value, 0, len(parts))
	for _, p := range parts {
		v, err := Parse(t, p, ctx)
		if err != nil {
			return List{}, err
		}
		items = append(items, v)
	}
	return List{Elem: t, Items: items}, nil
}

// Format renders v as raw property text, the inverse of Parse.
func Format(v Value) string {
	switch v := v.(type) {
	case Boolean:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return formatFloat(float64(v))
	case Text:
		return contentline.EscapeText(string(v))
	case Binary:
		return base64.StdEncoding.EncodeToString(v)
	case CalAddress:
		return string(v)
	case URI:
		return string(v)
	case Date:
		return v.String()
	case DateTime:
		return v.String()
	case Time:
		return v.String()
	case Duration:
		return v.String()
	case Period:
		return v.String()
	case UTCOffset:
		return v.String()
	case Geo:
		return v.String()
	case RequestStatus:
		return v.String()
	case *Recur:
		return v.String()
	case List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = Format(item)
		}
		return strings.Join(parts, ",")
	}
	return ""
}
