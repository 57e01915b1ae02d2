package value

import (
	"encoding/base64"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseBoolean accepts TRUE or FALSE in any case.
func ParseBoolean(s string) (Boolean, error) {
	switch strings.ToUpper(s) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	return false, typeErr(TypeBoolean, s, "expected TRUE or FALSE")
}

// ParseInteger accepts an optionally signed decimal within the 32-bit range.
func ParseInteger(s string) (Integer, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || !allDigits(digits) {
		return 0, typeErr(TypeInteger, s, "expected [+-]digits")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, typeErr(TypeInteger, s, "out of range")
	}
	return Integer(n), nil
}

// ParseFloat accepts [+-]digits[.digits]. Exponents are not part of the
// grammar.
func ParseFloat(s string) (Float, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 {
		return 0, typeErr(TypeFloat, s, "expected [+-]digits[.digits]")
	}
	whole, frac, hasFrac := strings.Cut(digits, ".")
	if !allDigits(whole) || (hasFrac && !allDigits(frac)) {
		return 0, typeErr(TypeFloat, s, "expected [+-]digits[.digits]")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, typeErr(TypeFloat, s, "%v", err)
	}
	return Float(f), nil
}

// ParseGeo parses the GEO structured value "latitude;longitude".
func ParseGeo(s string) (Geo, error) {
	latText, lonText, ok := strings.Cut(s, ";")
	if !ok {
		return Geo{}, typeErr(TypeFloat, s, "GEO needs latitude;longitude")
	}
	lat, err := ParseFloat(latText)
	if err != nil {
		return Geo{}, typeErr(TypeFloat, s, "bad latitude")
	}
	lon, err := ParseFloat(lonText)
	if err != nil {
		return Geo{}, typeErr(TypeFloat, s, "bad longitude")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Geo{}, typeErr(TypeFloat, s, "coordinates out of range")
	}
	return Geo{Latitude: float64(lat), Longitude: float64(lon)}, nil
}

func (g Geo) String() string {
	return formatFloat(g.Latitude) + ";" + formatFloat(g.Longitude)
}

// ParseBinary decodes base64 content. encoding is the ENCODING parameter,
// which must be BASE64.
func ParseBinary(s, encoding string) (Binary, error) {
	if !strings.EqualFold(encoding, "BASE64") {
		return nil, typeErr(TypeBinary, s, "BINARY requires ENCODING=BASE64")
	}
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, typeErr(TypeBinary, s, "invalid base64: %v", err)
	}
	return Binary(b), nil
}

// ParseURI requires an absolute URI.
func ParseURI(s string) (URI, error) {
	if err := checkAbsoluteURI(s); err != "" {
		return "", typeErr(TypeURI, s, "%s", err)
	}
	return URI(s), nil
}

// ParseCalAddress requires an absolute URI, typically mailto:.
func ParseCalAddress(s string) (CalAddress, error) {
	if err := checkAbsoluteURI(s); err != "" {
		return "", typeErr(TypeCalAddress, s, "%s", err)
	}
	return CalAddress(s), nil
}

func checkAbsoluteURI(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return err.Error()
	}
	if u.Scheme == "" {
		return "missing URI scheme"
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
