package helpers

import (
	"fmt"
	"strings"
)

// PayloadGenerator produces hostile response bodies and headers
type PayloadGenerator struct{}

// NewPayloadGenerator creates a new payload generator
func NewPayloadGenerator() *PayloadGenerator {
	return &PayloadGenerator{}
}

// MalformedGraphQL returns GraphQL bodies that must never decode cleanly.
// Each one must surface as an error, never as a panic or a silent success.
func (g *PayloadGenerator) MalformedGraphQL() map[string]string {
	return map[string]string{
		"empty":              ``,
		"whitespace":         "  \n\t ",
		"null":               `null`,
		"array":              `[]`,
		"string":             `"data"`,
		"number":             `42`,
		"empty object":       `{}`,
		"null data":          `{"data": null}`,
		"truncated":          `{"data": {"user": {"kaid": "kaid_3264`,
		"trailing garbage":   `{"data": {}} {"data": {}}`,
		"data wrong type":    `{"data": "not an object"}`,
		"errors wrong type":  `{"errors": "boom"}`,
		"errors null entry":  `{"errors": [null]}`,
		"html":               `<html><body>502 Bad Gateway</body></html>`,
		"nul bytes":          "{\"data\": {\"user\": \x00}}",
		"invalid utf8 keys":  "{\"\xff\xfe\": 1}",
		"errors without msg": `{"errors": [{}]}`,
	}
}

// GraphQLWithErrors returns bodies carrying an errors array, with and without data.
func (g *PayloadGenerator) GraphQLWithErrors() map[string]string {
	return map[string]string{
		"errors only":        `{"errors": [{"message": "Unauthorized", "extensions": {"code": "UNAUTHORIZED"}}]}`,
		"partial data":       `{"data": {"user": {"kaid": "kaid_326465577260382527912172"}}, "errors": [{"message": "profile hidden"}]}`,
		"many errors":        `{"errors": [` + strings.TrimSuffix(strings.Repeat(`{"message": "x"},`, 1000), ",") + `]}`,
		"huge message":       `{"errors": [{"message": "` + strings.Repeat("A", 1<<20) + `"}]}`,
		"unknown extensions": `{"errors": [{"message": "m", "extensions": {"code": "X", "trace": {"nested": [1, 2]}}}]}`,
	}
}

// MalformedProgramFields returns program bodies whose fields carry the wrong type.
func (g *PayloadGenerator) MalformedProgramFields() map[string]string {
	return map[string]string{
		"id as float":       `{"id": 5406513695948800.5}`,
		"id as object":      `{"id": {"value": 1}}`,
		"id as bool":        `{"id": true}`,
		"date as number":    `{"created": 1700000000}`,
		"date not iso":      `{"created": "yesterday"}`,
		"revision as array": `{"revision": []}`,
		"folds as string":   `{"revision": {"folds": "1,2"}}`,
	}
}

// MalformedSetCookies returns Set-Cookie lines a hostile or broken server might send.
func (g *PayloadGenerator) MalformedSetCookies() []string {
	return []string{
		"",
		";",
		"=",
		"=value-without-name",
		"name-without-value",
		"  KAAS  =  padded ; path=/",
		"KAAS=first; KAAS=second",
		"fkey=; path=/",
		"fkey=server-chosen-fkey; path=/",
		"KAAS=" + strings.Repeat("x", 8192),
		"KAAS=\"quoted value\"",
		"KAAS=café",
	}
}

// CookieFlood returns n distinct Set-Cookie lines.
func (g *PayloadGenerator) CookieFlood(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("flood%d=v%d; path=/", i, i)
	}
	return lines
}

// GenerateJSONBomb generates deeply nested JSON arrays
func (g *PayloadGenerator) GenerateJSONBomb(depth int) string {
	return strings.Repeat("[", depth) + strings.Repeat("]", depth)
}

// GenerateNotificationPage generates a readable notifications page holding size entries
func (g *PayloadGenerator) GenerateNotificationPage(size int, cursor string) string {
	var b strings.Builder
	b.WriteString(`{"cursor": "` + cursor + `", "notifications": [`)
	for i := 0; i < size; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"urlsafeKey": "n%d", "brandNew": true}`, i)
	}
	b.WriteString("]}")
	return b.String()
}
