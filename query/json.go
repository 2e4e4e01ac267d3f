package query

import "encoding/json"

// wireQuery is the JSON wire form: {"method": "...", "attribute": "...", "values": [...]}.
type wireQuery struct {
	Method    string        `json:"method"`
	Attribute string        `json:"attribute,omitempty"`
	Values    []any         `json:"values,omitempty"`
}

// ParseJSON decodes a single JSON query object into a *Query, recursing into
// nested queries for And/Or (whose "values" carry nested wire objects).
func ParseJSON(data []byte) (*Query, error) {
	var w wireQuery
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}

// ParseJSONList decodes a JSON array of query objects.
func ParseJSONList(data []byte) ([]*Query, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	result := make([]*Query, 0, len(raw))
	for _, r := range raw {
		q, err := ParseJSON(r)
		if err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	return result, nil
}

func fromWire(w wireQuery) (*Query, error) {
	if !IsMethod(w.Method) {
		return nil, &ValidationError{Method: w.Method, Reason: "unrecognized method"}
	}
	method := Method(w.Method)

	if logicalMethods[method] {
		nested := make([]*Query, 0, len(w.Values))
		for _, v := range w.Values {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			nq, err := ParseJSON(raw)
			if err != nil {
				return nil, err
			}
			nested = append(nested, nq)
		}
		return &Query{Method: method, Queries: nested}, nil
	}

	return &Query{Method: method, Attribute: w.Attribute, Values: w.Values}, nil
}

// MarshalJSON round-trips a Query back to its wire form (§4.5: "must
// round-trip with an isMethod(name) recognizer").
func (q *Query) MarshalJSON() ([]byte, error) {
	if q.IsLogical() {
		nestedValues := make([]any, 0, len(q.Queries))
		for _, nq := range q.Queries {
			nestedValues = append(nestedValues, nq)
		}
		return json.Marshal(wireQuery{Method: string(q.Method), Values: nestedValues})
	}
	return json.Marshal(wireQuery{Method: string(q.Method), Attribute: q.Attribute, Values: q.Values})
}
