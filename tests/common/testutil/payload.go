//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type Mutation func(m map[string]any)

// Payload round-trips v through JSON so request bodies can be broken field by field.
func Payload(t *testing.T, v any, muts ...Mutation) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, mut := range muts {
		mut(m)
	}
	return m
}

func Without(key string) Mutation {
	return func(m map[string]any) { delete(m, key) }
}

func With(key string, value any) Mutation {
	return func(m map[string]any) { m[key] = value }
}
