package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer provides utilities for generating adversarial input strings
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new Fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// FuzzKaid generates malformed user identifiers. None of them is a valid kaid.
func (f *Fuzzer) FuzzKaid() []string {
	return []string{
		"",
		"kaid_",
		"kaid_1234567890123456789",
		"kaid_12345678901234567890123456",
		"KAID_326465577260382527912172",
		"kaid-326465577260382527912172",
		"kaid_32646557726038252791217a",
		" kaid_326465577260382527912172",
		"kaid_326465577260382527912172 ",
		"kaid_326465577260382527912172\n",
		"kaid_326465577260382527912172/../../graphql",
		"kaid_326465577260382527912172&kaid=kaid_000000000000000000000",
		"kaid_３２６４６５５７７２６０３８２５２７９１２１７２",
		"kaid_326465577260382527912172\x00",
	}
}

// FuzzProgramID generates malformed program identifiers. None of them is valid.
func (f *Fuzzer) FuzzProgramID() []string {
	return []string{
		"",
		"0",
		"12345678",          // 8 digits
		"12345678901",       // 11 digits
		"123456789012345",   // 15 digits
		"12345678901234567", // 17 digits
		"-5406513695948800",
		"+5406513695948800",
		"5406513695948800.0",
		"5406513695948800 ",
		"5406513695948800/",
		"5406513695948800?projection={}",
		"../5406513695948800",
		"5406513695948800%2F..",
		"５４０６５１３６９５９４８８００",
		"0x1335BD8F0C8000",
	}
}

// FuzzKey generates opaque feedback keys. Some are harmless, most try to
// escape the path segment they are placed in.
func (f *Fuzzer) FuzzKey() []string {
	keys := []string{
		"",
		".",
		"..",
		"kaencrypted_..",
		"a b",
		"a+b",
		"a;b",
		"a\\b",
		"a\tb",
		"a\u202Eb",
		"тест",
		strings.Repeat("k", 4096),
	}
	return append(keys, f.GeneratePathTraversals()...)
}

// FuzzUsername generates adversarial usernames
func (f *Fuzzer) FuzzUsername() []string {
	return []string{
		"learner&kaid=kaid_326465577260382527912172",
		"learner?x=1",
		"learner#frag",
		"learner/../admin",
		"learner=1",
		"learner name",
		"learner\"}, \"kaid\": \"kaid_326465577260382527912172",
		"learner\\u0022",
		"тест",
	}
}

// FuzzUserAgent generates malicious User-Agent test cases
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		// Header injection via newlines
		"MyApp/1.0\nX-Evil-Header: injected",
		"MyApp/1.0\rX-Evil-Header: injected",
		"MyApp/1.0\r\nX-Evil-Header: injected",
		"MyApp/1.0\n\nInjected Body",
		"MyApp/1.0\r\nContent-Length: 0\r\n\r\nGET /evil HTTP/1.1",
		"MyApp/1.0\nCookie: KAAS=stolen",
		"\n\n\nMyApp/1.0",

		// Too long
		strings.Repeat("a", 257),
		strings.Repeat("a", 10000),
	}
}

// FuzzListingLimit generates out of range listing limits
func (f *Fuzzer) FuzzListingLimit() []int {
	return []int{
		-1,
		-100,
		-2147483648,
		10001,
		2147483647,
	}
}

// GenerateRandomString generates a random string of the given length with specified character types
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		special = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"
	)

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharString generates strings carrying each ASCII control character
func (f *Fuzzer) GenerateControlCharString() []string {
	var results []string
	for i := 0; i < 32; i++ {
		r := rune(i)
		if unicode.IsControl(r) {
			results = append(results, "test"+string(r)+"string")
		}
	}
	return append(results, "test\x7Fstring")
}

// GenerateUnicodeAttacks generates strings with various Unicode attack patterns
func (f *Fuzzer) GenerateUnicodeAttacks() []string {
	return []string{
		"test\u200Bstring", // Zero-width space
		"test\uFEFFstring", // Zero-width no-break space
		"test\u202Estring", // Right-to-left override
		"á̂̃",
		"café",
		"café",
		"gооgle", // Cyrillic о
	}
}

// GeneratePathTraversals generates path traversal attack patterns
func (f *Fuzzer) GeneratePathTraversals() []string {
	return []string{
		"../../etc/passwd",
		"..\\..\\windows\\system32",
		"..%2F..%2Fapi%2Finternal",
		"....//....//graphql",
		"..;/..;/scratchpads",
		"/api/internal/scratchpads",
		"%2e%2e",
		"key?casing=camel",
		"key#fragment",
	}
}
