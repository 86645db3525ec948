// Package mapper flattens nested user JSON objects into normalized record graphs.
package mapper

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// childFunc maps one nested object onto the graph under construction.
type childFunc func(m *Mapper, g *model.Graph, obj map[string]json.RawMessage, path string) error

// userChildren is the closed set of nested objects a user may carry.
var userChildren = map[string]childFunc{
	"address": (*Mapper).mapAddress,
	"company": (*Mapper).mapCompany,
}

// Mapper turns raw user objects into record graphs. It holds no mutable
// state and may be reused for every record of a run.
type Mapper struct {
	user    *model.Table
	address *model.Table
	geo     *model.Table
	company *model.Table
}

// New creates a Mapper over the given registry. Every table the mapper
// produces must be registered.
func New(reg *model.Registry) (*Mapper, error) {
	m := &Mapper{
		user:    reg.ByName(model.UserTable.Name),
		address: reg.ByKey("address"),
		geo:     reg.ByKey("geo"),
		company: reg.ByKey("company"),
	}
	if m.user == nil || m.address == nil || m.geo == nil || m.company == nil {
		return nil, eris.New("mapper: registry is missing user tables")
	}
	return m, nil
}

// Map converts one source object into a graph holding one User, one Address
// with its Geo, and one Company. List-valued fields are dropped and recorded
// in Graph.Dropped. Geo.AddressID is left for the store to assign.
func (m *Mapper) Map(raw model.RawObject) (*model.Graph, error) {
	idRaw, ok := raw["id"]
	if !ok || kindOf(idRaw) == kindNull {
		return nil, &SchemaMismatchError{Path: "id", Reason: "missing required field"}
	}

	g := &model.Graph{User: &model.User{}}
	if err := userFields.set(g.User, m.user.Name, "id", idRaw); err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch kindOf(value) {
		case kindList:
			g.Dropped = append(g.Dropped, key)
		case kindObject:
			child, ok := userChildren[key]
			if !ok {
				return nil, &SchemaMismatchError{Path: key, Reason: "no schema for nested object"}
			}
			obj, err := decodeObject(value, key)
			if err != nil {
				return nil, err
			}
			if err := child(m, g, obj, key); err != nil {
				return nil, err
			}
		default:
			if _, ok := userChildren[key]; ok {
				return nil, notAnObject(key, value)
			}
			if err := userFields.set(g.User, m.user.Name, key, value); err != nil {
				return nil, err
			}
		}
	}

	switch {
	case g.Address == nil:
		return nil, &SchemaMismatchError{Path: "address", Reason: "missing nested object"}
	case g.Address.Geo == nil:
		return nil, &SchemaMismatchError{Path: "address.geo", Reason: "missing nested object"}
	case g.Company == nil:
		return nil, &SchemaMismatchError{Path: "company", Reason: "missing nested object"}
	}
	return g, nil
}

func (m *Mapper) mapAddress(g *model.Graph, obj map[string]json.RawMessage, path string) error {
	addr := &model.Address{UserID: g.User.ID}
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		switch kindOf(value) {
		case kindList:
			g.Dropped = append(g.Dropped, joinPath(path, key))
		case kindObject:
			if key != m.geo.JSONKey {
				return &SchemaMismatchError{Path: joinPath(path, key), Reason: "no schema for nested object"}
			}
			geoObj, err := decodeObject(value, joinPath(path, key))
			if err != nil {
				return err
			}
			geo, err := m.mapGeo(g, geoObj, joinPath(path, key))
			if err != nil {
				return err
			}
			addr.Geo = geo
		default:
			if key == m.geo.JSONKey {
				return notAnObject(joinPath(path, key), value)
			}
			if err := addressFields.set(addr, m.address.Name, key, value); err != nil {
				return err
			}
		}
	}
	g.Address = addr
	return nil
}

func (m *Mapper) mapGeo(g *model.Graph, obj map[string]json.RawMessage, path string) (*model.Geo, error) {
	geo := &model.Geo{}
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		switch kindOf(value) {
		case kindList:
			g.Dropped = append(g.Dropped, joinPath(path, key))
		case kindObject:
			return nil, &SchemaMismatchError{Path: joinPath(path, key), Reason: "no schema for nested object"}
		default:
			if err := geoFields.set(geo, m.geo.Name, key, value); err != nil {
				return nil, err
			}
		}
	}
	return geo, nil
}

func (m *Mapper) mapCompany(g *model.Graph, obj map[string]json.RawMessage, path string) error {
	company := &model.Company{UserID: g.User.ID}
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		switch kindOf(value) {
		case kindList:
			g.Dropped = append(g.Dropped, joinPath(path, key))
		case kindObject:
			return &SchemaMismatchError{Path: joinPath(path, key), Reason: "no schema for nested object"}
		default:
			if err := companyFields.set(company, m.company.Name, key, value); err != nil {
				return err
			}
		}
	}
	g.Company = company
	return nil
}

// notAnObject reports a null or scalar where a nested object belongs.
func notAnObject(path string, value json.RawMessage) error {
	if kindOf(value) == kindNull {
		return &SchemaMismatchError{Path: path, Reason: "missing nested object"}
	}
	return &SchemaMismatchError{Path: path, Reason: "expected object"}
}

func decodeObject(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &SchemaMismatchError{Path: path, Reason: "malformed object"}
	}
	return obj, nil
}
