// Package id generates prefixed, URL-safe record identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes. The prefix makes an ID self-describing in logs and URLs.
const (
	PrefixUser         = "usr"
	PrefixProfile      = "prf"
	PrefixInvitation   = "inv"
	PrefixMessage      = "msg"
	PrefixNotification = "ntf"
	PrefixClient       = "sse"
	PrefixToken        = "tok"
)

// Generate returns "<prefix>-<nanoid>", e.g. "inv-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v was generated with prefix.
func HasPrefix(v, prefix string) bool {
	return strings.HasPrefix(v, prefix+"-") && len(v) > len(prefix)+1
}
