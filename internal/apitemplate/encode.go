package apitemplate

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// EncodeJSON writes the document as JSON. With IncludeRootInJSON a single
// record becomes {"user":{...}} and a collection {"users":[...]}.
func (d *Document) EncodeJSON(w io.Writer) error {
	var body any
	if d.Collection {
		objs := d.Objects
		if objs == nil {
			objs = []Object{}
		}
		body = objs
	} else if len(d.Objects) > 0 {
		body = d.Objects[0]
	}

	if d.opts.IncludeRootInJSON {
		body = Object{{Key: d.Root, Value: body}}
	}
	return json.NewEncoder(w).Encode(body)
}

// EncodeXML writes the document as XML using typed elements:
//
//	<user>
//	  <id type="integer">1</id>
//	  <first-name>Luke</first-name>
//	</user>
func (d *Document) EncodeXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	x := xmlWriter{enc: enc, dasherize: d.opts.Dasherize}
	if d.Collection {
		start := x.start(d.Root, xml.Attr{Name: xml.Name{Local: "type"}, Value: "array"})
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, obj := range d.Objects {
			if err := x.value(d.Item, obj); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	} else {
		var obj Object
		if len(d.Objects) > 0 {
			obj = d.Objects[0]
		}
		if err := x.value(d.Root, obj); err != nil {
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

type xmlWriter struct {
	enc       *xml.Encoder
	dasherize bool
}

func (x xmlWriter) name(key string) string {
	if x.dasherize {
		return strings.ReplaceAll(key, "_", "-")
	}
	return key
}

func (x xmlWriter) start(key string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: x.name(key)}, Attr: attrs}
}

func typeAttr(t string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "type"}, Value: t}
}

func (x xmlWriter) leaf(key, text string, attrs ...xml.Attr) error {
	start := x.start(key, attrs...)
	if err := x.enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := x.enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return x.enc.EncodeToken(start.End())
}

func (x xmlWriter) value(key string, v any) error {
	switch val := v.(type) {
	case nil:
		return x.leaf(key, "", xml.Attr{Name: xml.Name{Local: "nil"}, Value: "true"})
	case Object:
		start := x.start(key)
		if err := x.enc.EncodeToken(start); err != nil {
			return err
		}
		for _, e := range val {
			if err := x.value(e.Key, e.Value); err != nil {
				return err
			}
		}
		return x.enc.EncodeToken(start.End())
	case string:
		return x.leaf(key, val)
	case bool:
		return x.leaf(key, strconv.FormatBool(val), typeAttr("boolean"))
	case time.Time:
		return x.leaf(key, val.Format(time.RFC3339), typeAttr("dateTime"))
	case *time.Time:
		if val == nil {
			return x.value(key, nil)
		}
		return x.value(key, *val)
	case fmt.Stringer:
		return x.leaf(key, val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return x.leaf(key, fmt.Sprint(v), typeAttr("integer"))
	case reflect.Float32, reflect.Float64:
		return x.leaf(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64), typeAttr("float"))
	case reflect.Pointer:
		if rv.IsNil() {
			return x.value(key, nil)
		}
		return x.value(key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		start := x.start(key, typeAttr("array"))
		if err := x.enc.EncodeToken(start); err != nil {
			return err
		}
		item := singular(key)
		for i := 0; i < rv.Len(); i++ {
			if err := x.value(item, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return x.enc.EncodeToken(start.End())
	case reflect.Map:
		return fmt.Errorf("key %q: maps are not supported in xml output, use nested fields", key)
	default:
		return x.leaf(key, fmt.Sprint(v))
	}
}

func singular(key string) string {
	switch {
	case strings.HasSuffix(key, "ies") && len(key) > 3:
		return key[:len(key)-3] + "y"
	case strings.HasSuffix(key, "s") && len(key) > 1:
		return key[:len(key)-1]
	default:
		return key
	}
}
