package mongo

import (
	"github.com/friendsofgo/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
)

var operators = map[filter.Op]string{
	filter.OpEq:  "$eq",
	filter.OpNe:  "$ne",
	filter.OpGt:  "$gt",
	filter.OpGte: "$gte",
	filter.OpLt:  "$lt",
	filter.OpLte: "$lte",
	filter.OpIn:  "$in",
	filter.OpNin: "$nin",
}

// Translate renders a predicate tree as a MongoDB query document.
// The filter semantics are the document store's own, so the mapping is
// structural: And/Or/Nor become $and/$or/$nor and ElemMatch $elemMatch.
func Translate(n filter.Node) (bson.M, error) {
	return translate(n, true)
}

func translate(n filter.Node, top bool) (bson.M, error) {
	switch n := n.(type) {
	case nil, filter.All:
		return bson.M{}, nil
	case filter.None:
		return bson.M{"_id": bson.M{"$in": bson.A{}}}, nil
	case filter.And:
		if len(n.Nodes) == 0 {
			return bson.M{}, nil
		}
		return logical("$and", n.Nodes, top)
	case filter.Or:
		if len(n.Nodes) == 0 {
			return translate(filter.None{}, top)
		}
		return logical("$or", n.Nodes, top)
	case filter.Nor:
		if len(n.Nodes) == 0 {
			return bson.M{}, nil
		}
		return logical("$nor", n.Nodes, top)
	case filter.Compare:
		op, ok := operators[n.Op]
		if !ok {
			return nil, errors.Errorf("mongo: unsupported operator %q", n.Op)
		}
		value := n.Value
		if n.Op == filter.OpIn || n.Op == filter.OpNin {
			list, err := array(value)
			if err != nil {
				return nil, err
			}
			value = list
		}
		return bson.M{field(n.Field, top): bson.M{op: value}}, nil
	case filter.ElemMatch:
		inner, err := translate(n.Node, false)
		if err != nil {
			return nil, err
		}
		return bson.M{field(n.Field, top): bson.M{"$elemMatch": inner}}, nil
	}
	return nil, errors.Errorf("mongo: unsupported filter node %T", n)
}

func logical(op string, nodes []filter.Node, top bool) (bson.M, error) {
	parts := make(bson.A, 0, len(nodes))
	for _, node := range nodes {
		part, err := translate(node, top)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return bson.M{op: parts}, nil
}

// field maps the public id to the document key. Element fields are kept.
func field(name string, top bool) string {
	if top && name == "id" {
		return "_id"
	}
	return name
}

func array(value any) (bson.A, error) {
	switch v := value.(type) {
	case []any:
		return bson.A(v), nil
	case []string:
		out := make(bson.A, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.Errorf("mongo: expected a list operand, got %T", value)
}

// Sort renders an order as a sort document.
func Sort(orderBy []realestates.OrderBy) bson.D {
	d := make(bson.D, 0, len(orderBy))
	for _, o := range orderBy {
		dir := 1
		if o.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: field(o.Column, true), Value: dir})
	}
	return d
}
