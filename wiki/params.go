package wiki

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

// normalizeParams turns the supported parameter shapes into url.Values with
// the MediaWiki read-API defaults applied.
func normalizeParams(p any) (url.Values, error) {
	values := url.Values{}

	switch v := p.(type) {
	case nil:
		// nothing
	case url.Values:
		for k, vs := range v {
			if len(vs) == 0 {
				continue
			}
			// For MW, repeated fields are represented by |.
			values.Set(k, strings.Join(vs, "|"))
		}
	case map[string]string:
		for k, val := range v {
			values.Set(k, val)
		}
	case map[string]any:
		for k, val := range v {
			if err := addAny(values, k, val); err != nil {
				return nil, err
			}
		}
	default:
		rv := reflect.ValueOf(p)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				break
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil, fmt.Errorf("unsupported params type: %T", p)
		}
		qv, err := query.Values(p)
		if err != nil {
			return nil, err
		}
		for k, vs := range qv {
			if len(vs) == 0 {
				continue
			}
			values.Set(k, strings.Join(vs, "|"))
		}
	}

	setDefaultIfMissing(values, "action", "query")
	setDefaultIfMissing(values, "format", "json")
	setDefaultIfMissing(values, "formatversion", "2")
	setDefaultIfMissing(values, "errorformat", "plaintext")

	return values, nil
}

func setDefaultIfMissing(v url.Values, key, value string) {
	if v.Get(key) == "" {
		v.Set(key, value)
	}
}

func addAny(values url.Values, key string, val any) error {
	if val == nil {
		return nil
	}

	switch x := val.(type) {
	case string:
		values.Set(key, x)
	case bool:
		if x {
			values.Set(key, "1")
		}
	case []string:
		if len(x) > 0 {
			values.Set(key, strings.Join(x, "|"))
		}
	case fmt.Stringer:
		values.Set(key, x.String())
	case int:
		values.Set(key, strconv.Itoa(x))
	case int64:
		values.Set(key, strconv.FormatInt(x, 10))
	case float64:
		values.Set(key, strconv.FormatFloat(x, 'f', -1, 64))
	default:
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			values.Set(key, strconv.FormatInt(rv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			values.Set(key, strconv.FormatUint(rv.Uint(), 10))
		case reflect.Slice, reflect.Array:
			parts := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts = append(parts, fmt.Sprint(rv.Index(i).Interface()))
			}
			if len(parts) > 0 {
				values.Set(key, strings.Join(parts, "|"))
			}
		default:
			values.Set(key, fmt.Sprint(val))
		}
	}
	return nil
}
