package executor

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go"
)

// Links renders the RFC 5988 Link header for a page. Each link repeats the
// query, sort, fields and count of spec and carries the neighbour cursor in
// the "data" parameter. It returns "" when the page has no neighbours.
func Links(base *url.URL, spec *realestates.QuerySpec, info *realestates.PageInfo) (string, error) {
	var links []string

	prev, err := info.StartCursor()
	if err != nil {
		return "", errors.Wrap(err, "encode prev cursor")
	}
	if prev != nil {
		link, err := link(base, spec, *prev, "prev")
		if err != nil {
			return "", err
		}
		links = append(links, link)
	}

	next, err := info.EndCursor()
	if err != nil {
		return "", errors.Wrap(err, "encode next cursor")
	}
	if next != nil {
		link, err := link(base, spec, *next, "next")
		if err != nil {
			return "", err
		}
		links = append(links, link)
	}

	return strings.Join(links, ", "), nil
}

func link(base *url.URL, spec *realestates.QuerySpec, cursor, rel string) (string, error) {
	data, err := Descriptor(spec, cursor)
	if err != nil {
		return "", err
	}

	u := *base
	q := u.Query()
	q.Set("data", data)
	u.RawQuery = q.Encode()

	return "<" + u.String() + `>; rel="` + rel + `"`, nil
}

// Descriptor serializes spec back into the "data" format with cursor as the
// resume token. Sort keys keep their order.
func Descriptor(spec *realestates.QuerySpec, cursor string) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if len(spec.Query) > 0 {
		buf.WriteString(`"query":`)
		buf.Write(spec.Query)
		buf.WriteByte(',')
	}

	if len(spec.Sort) > 0 {
		buf.WriteString(`"sort":{`)
		for i, o := range spec.Sort {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(o.Column)
			if err != nil {
				return "", errors.Wrap(err, "encode sort key")
			}
			buf.Write(key)
			if o.Desc {
				buf.WriteString(":-1")
			} else {
				buf.WriteString(":1")
			}
		}
		buf.WriteString("},")
	}

	if len(spec.Fields) > 0 {
		buf.WriteString(`"fields":{`)
		for i, f := range spec.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f)
			if err != nil {
				return "", errors.Wrap(err, "encode field")
			}
			buf.Write(key)
			buf.WriteString(":1")
		}
		buf.WriteString("},")
	}

	count, err := json.Marshal(spec.Count)
	if err != nil {
		return "", errors.Wrap(err, "encode count")
	}
	buf.WriteString(`"count":`)
	buf.Write(count)

	token, err := json.Marshal(cursor)
	if err != nil {
		return "", errors.Wrap(err, "encode cursor")
	}
	buf.WriteString(`,"cursor":`)
	buf.Write(token)

	buf.WriteByte('}')
	return buf.String(), nil
}
