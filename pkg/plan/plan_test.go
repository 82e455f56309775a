package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstanceDistribution(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    PackingPlan
		wantErr bool
	}{
		{
			name:  "single container single instance",
			input: "1:S:10:0",
			want: PackingPlan{
				1: {{ComponentName: "S", GlobalTaskID: 10, ComponentIndex: 0}},
			},
		},
		{
			name:  "single container multiple instances",
			input: "1:S:10:0:S:11:1",
			want: PackingPlan{
				1: {
					{ComponentName: "S", GlobalTaskID: 10, ComponentIndex: 0},
					{ComponentName: "S", GlobalTaskID: 11, ComponentIndex: 1},
				},
			},
		},
		{
			name:  "multiple containers",
			input: "0:T:0:0,1:S:10:0:S:11:1",
			want: PackingPlan{
				0: {{ComponentName: "T", GlobalTaskID: 0, ComponentIndex: 0}},
				1: {
					{ComponentName: "S", GlobalTaskID: 10, ComponentIndex: 0},
					{ComponentName: "S", GlobalTaskID: 11, ComponentIndex: 1},
				},
			},
		},
		{
			name:  "empty distribution",
			input: "",
			want:  PackingPlan{},
		},
		{
			name:    "triplet count not a multiple of 3",
			input:   "1:S:10",
			wantErr: true,
		},
		{
			name:    "zero triplets for a block is rejected",
			input:   "1:",
			wantErr: true,
		},
		{
			name:    "negative container id",
			input:   "-1:S:10:0",
			wantErr: true,
		},
		{
			name:    "non-integer container id",
			input:   "x:S:10:0",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInstanceDistribution(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %+v, want %+v", got, tc.want)
		})
	}
}

func TestPackingPlanEqual(t *testing.T) {
	a := PackingPlan{1: {{ComponentName: "S", GlobalTaskID: 10, ComponentIndex: 0}}}
	b := PackingPlan{1: {{ComponentName: "S", GlobalTaskID: 10, ComponentIndex: 0}}}
	c := PackingPlan{1: {{ComponentName: "S", GlobalTaskID: 99, ComponentIndex: 0}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(PackingPlan{}))
}

func TestParseInstanceDistributionIdempotent(t *testing.T) {
	input := "1:S:10:0:S:11:1"
	first, err := ParseInstanceDistribution(input)
	require.NoError(t, err)
	second, err := ParseInstanceDistribution(input)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}
