package server

import (
	"net/url"
	"testing"

	"github.com/jonathan/orphaned-data/internal/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBulkForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    bulk.Request
		wantErr bool
	}{
		{
			name: "top selector",
			form: url.Values{"action": {"delete"}, "action2": {"change_type"}, "post[]": {"3", "9"}},
			want: bulk.Request{Action: bulk.ActionDelete, PostIDs: []int64{3, 9}},
		},
		{
			name: "bottom selector with its own target",
			form: url.Values{"action": {"-1"}, "target_post_type": {"page"}, "action2": {"change_type"}, "target_post_type2": {"post"}, "post[]": {"3"}},
			want: bulk.Request{Action: bulk.ActionChangeType, TargetType: "post", PostIDs: []int64{3}},
		},
		{
			name: "empty top selector",
			form: url.Values{"action": {""}, "action2": {"delete"}, "post[]": {"3"}},
			want: bulk.Request{Action: bulk.ActionDelete, PostIDs: []int64{3}},
		},
		{
			name: "row delete wins",
			form: url.Values{"action": {"change_type"}, "delete_post": {"12"}, "post[]": {"3"}},
			want: bulk.Request{Action: bulk.ActionDelete, PostIDs: []int64{12}},
		},
		{
			name: "no action",
			form: url.Values{"action": {"-1"}, "action2": {"-1"}},
			want: bulk.Request{},
		},
		{
			name:    "bad row id",
			form:    url.Values{"delete_post": {"twelve"}},
			wantErr: true,
		},
		{
			name:    "non-positive id",
			form:    url.Values{"action": {"delete"}, "post[]": {"0"}},
			wantErr: true,
		},
		{
			name: "unregistered target is left to the processor",
			form: url.Values{"action": {"change_type"}, "target_post_type": {"a_post_type_name_over_twenty"}, "post[]": {"1"}},
			want: bulk.Request{Action: bulk.ActionChangeType, TargetType: "a_post_type_name_over_twenty", PostIDs: []int64{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBulkForm(tt.form)
			if tt.wantErr {
				var invalid *ErrValidation
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
