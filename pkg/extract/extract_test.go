package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uidA = "0b6f1c34-9a2d-4f08-b1e5-6c7d8e9f0a1b"
	uidB = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
)

func TestMetadataFromMap_SortsAndCoerces(t *testing.T) {
	md := MetadataFromMap(map[string]interface{}{
		"zeta":  "last",
		"alpha": "first",
		"count": float64(3),
		"flag":  true,
		"skip":  []interface{}{"not", "scalar"},
	})

	require.Len(t, md, 4)
	assert.Equal(t, Pair{Key: "alpha", Value: "first"}, md[0])
	assert.Equal(t, Pair{Key: "count", Value: "3"}, md[1])
	assert.Equal(t, Pair{Key: "flag", Value: "true"}, md[2])
	assert.Equal(t, Pair{Key: "zeta", Value: "last"}, md[3])

	_, ok := md.Get("skip")
	assert.False(t, ok, "non-scalar values should be dropped")
}

func TestFromKnownKeys(t *testing.T) {
	tests := []struct {
		name string
		md   map[string]interface{}
		want Result
	}{
		{
			name: "all fields present",
			md: map[string]interface{}{
				"owner_uid": uidA,
				"plan":      "pro",
				"email":     "owner@example.com",
			},
			want: Result{OwnerUID: uidA, Plan: "pro", Email: "owner@example.com"},
		},
		{
			name: "owner_uid takes precedence over uid",
			md: map[string]interface{}{
				"owner_uid": uidA,
				"uid":       uidB,
			},
			want: Result{OwnerUID: uidA},
		},
		{
			name: "uid fallback",
			md:   map[string]interface{}{"uid": uidB},
			want: Result{OwnerUID: uidB},
		},
		{
			name: "plan takes precedence over owner_plan",
			md: map[string]interface{}{
				"plan":       "starter",
				"owner_plan": "plus",
			},
			want: Result{Plan: "starter"},
		},
		{
			name: "owner_plan fallback when plan invalid",
			md: map[string]interface{}{
				"plan":       "enterprise",
				"owner_plan": "Plus",
			},
			want: Result{Plan: "plus"},
		},
		{
			name: "invalid email dropped",
			md:   map[string]interface{}{"email": "not-an-address"},
			want: Result{},
		},
		{
			name: "uid is trusted without shape check",
			md:   map[string]interface{}{"owner_uid": "legacy-id-123"},
			want: Result{OwnerUID: "legacy-id-123"},
		},
		{
			name: "empty metadata",
			md:   nil,
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromKnownKeys(MetadataFromMap(tt.md))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want Result
	}{
		{
			name: "all fields",
			desc: "owner_uid=" + uidA + " plan=starter email=a@b.io",
			want: Result{OwnerUID: uidA, Plan: "starter", Email: "a@b.io"},
		},
		{
			name: "case insensitive labels and spacing",
			desc: "OWNER_UID = " + uidB + ", PLAN = Pro",
			want: Result{OwnerUID: uidB, Plan: "pro"},
		},
		{
			name: "fields matched independently",
			desc: "renewal for plan=plus, thanks",
			want: Result{Plan: "plus"},
		},
		{
			name: "non-uuid identifier rejected",
			desc: "owner_uid=12345 plan=pro",
			want: Result{Plan: "pro"},
		},
		{
			name: "plan outside enumeration rejected",
			desc: "plan=enterprise",
			want: Result{},
		},
		{
			name: "empty description",
			desc: "",
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDescription(tt.desc))
		})
	}
}

func TestFromHeuristics(t *testing.T) {
	tests := []struct {
		name string
		md   Metadata
		want Result
	}{
		{
			name: "qualified key adopted immediately",
			md: Metadata{
				{Key: "customer_uid", Value: uidA},
				{Key: "session", Value: uidB},
			},
			want: Result{OwnerUID: uidA},
		},
		{
			name: "first qualified key wins",
			md: Metadata{
				{Key: "owner_ref", Value: uidA},
				{Key: "uid", Value: uidB},
			},
			want: Result{OwnerUID: uidA},
		},
		{
			name: "single unqualified uuid adopted by elimination",
			md: Metadata{
				{Key: "note", Value: "hello"},
				{Key: "ref", Value: uidB},
			},
			want: Result{OwnerUID: uidB},
		},
		{
			name: "two unqualified uuids is ambiguous",
			md: Metadata{
				{Key: "ref", Value: uidA},
				{Key: "session", Value: uidB},
			},
			want: Result{},
		},
		{
			name: "qualified match ignores other candidates",
			md: Metadata{
				{Key: "cart", Value: uidB},
				{Key: "owner", Value: uidA},
				{Key: "trace", Value: uidB},
			},
			want: Result{OwnerUID: uidA},
		},
		{
			name: "plan and email collected independently",
			md: Metadata{
				{Key: "tier", Value: "plus"},
				{Key: "contact", Value: "c@d.org"},
				{Key: "ref", Value: uidA},
				{Key: "session", Value: uidB},
			},
			want: Result{Plan: "plus", Email: "c@d.org"},
		},
		{
			name: "no uuid shaped values",
			md: Metadata{
				{Key: "uid", Value: "short"},
			},
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromHeuristics(tt.md))
		})
	}
}

func TestMerge_PerFieldPrecedence(t *testing.T) {
	structured := Result{Plan: "pro"}
	description := Result{OwnerUID: uidA, Plan: "starter"}
	heuristic := Result{Email: "x@y.net"}

	got := Merge(structured, description, heuristic)

	assert.Equal(t, uidA, got.OwnerUID, "uid should come from the first result that has one")
	assert.Equal(t, "pro", got.Plan, "earlier plan must not be overwritten")
	assert.Equal(t, "x@y.net", got.Email)
}

func TestIsUUID_CanonicalFormOnly(t *testing.T) {
	assert.True(t, IsUUID(uidA))
	assert.True(t, IsUUID("F47AC10B-58CC-4372-A567-0E02B2C3D479"))

	// Forms uuid.Parse accepts but the shape check must reject.
	assert.False(t, IsUUID("{"+uidA+"}"))
	assert.False(t, IsUUID("urn:uuid:"+uidA))
	assert.False(t, IsUUID("f47ac10b58cc4372a5670e02b2c3d479"))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("not-a-uuid"))
}
