// Package schemas validates request payloads against embedded JSON Schemas.
package schemas

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nrfta/realestates-go"
)

//go:embed realestate.json
var realEstateSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func realEstate() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("realestate.json", bytes.NewReader(realEstateSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile("realestate.json")
	})
	return compiled, compileErr
}

// RealEstate validates a create or update body and decodes it. Server-owned
// fields pass validation but are left for the caller to overwrite.
func RealEstate(body []byte) (*realestates.RealEstate, error) {
	schema, err := realEstate()
	if err != nil {
		return nil, err
	}

	var v any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&v); err != nil {
		return nil, realestates.UnprocessableEntity("body is not valid JSON")
	}
	if err := schema.Validate(v); err != nil {
		return nil, realestates.UnprocessableEntity("%s", message(err))
	}

	re := &realestates.RealEstate{}
	if err := json.Unmarshal(body, re); err != nil {
		return nil, realestates.UnprocessableEntity("%s", err.Error())
	}
	return re, nil
}

// message picks the most specific cause of a validation failure.
func message(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}
