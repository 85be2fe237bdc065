package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

// Parser handles decoding of Khan Academy response bodies
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// graphQLEnvelope is the top level of every GraphQL response.
type graphQLEnvelope struct {
	Data   json.RawMessage           `json:"data"`
	Errors []kaerrors.GraphQLMessage `json:"errors"`
}

// ParseGraphQL decodes the data member of a GraphQL response into v.
//
// A non-empty errors array is returned as *errors.GraphQLError. Any data that
// arrived alongside the errors is still decoded into v. A body with neither
// data nor errors is a *errors.ParseError.
func (p *Parser) ParseGraphQL(operation string, body []byte, v any) error {
	var env graphQLEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &kaerrors.ParseError{Operation: operation, Message: "failed to decode GraphQL envelope", Err: err}
	}

	hasData := len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null"))
	if hasData && v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return &kaerrors.ParseError{Operation: operation, Message: "failed to decode GraphQL data", Err: err}
		}
	}

	if len(env.Errors) > 0 {
		return &kaerrors.GraphQLError{Operation: operation, Messages: env.Errors}
	}
	if !hasData {
		return &kaerrors.ParseError{Operation: operation, Message: "response carried neither data nor errors"}
	}
	return nil
}

// ParseJSON decodes a plain REST response body into v.
func (p *Parser) ParseJSON(operation string, body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &kaerrors.ParseError{Operation: operation, Message: "empty response body"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &kaerrors.ParseError{Operation: operation, Message: fmt.Sprintf("failed to decode %d byte body", len(body)), Err: err}
	}
	return nil
}

// ParseResponse checks the status of resp and decodes its body into v.
// A nil v skips decoding, for endpoints whose body carries nothing useful.
func (p *Parser) ParseResponse(operation string, resp *Response, v any) error {
	if err := CheckStatus(operation, resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return p.ParseJSON(operation, resp.Body, v)
}

// ParseGraphQLResponse checks the status of resp and decodes its GraphQL data into v.
func (p *Parser) ParseGraphQLResponse(operation string, resp *Response, v any) error {
	if err := CheckStatus(operation, resp); err != nil {
		return err
	}
	return p.ParseGraphQL(operation, resp.Body, v)
}
