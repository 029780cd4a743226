package validation

import (
	"testing"

	apperrors "soc-dashboard/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountValidator(t *testing.T) {
	v := MustValidator("critical", CountSchema())

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"count":42,"_shards":{"total":1}}`, false},
		{"zero", `{"count":0}`, false},
		{"missing count", `{"_shards":{}}`, true},
		{"string count", `{"count":"42"}`, true},
		{"negative", `{"count":-1}`, true},
		{"not json", `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsShape(err))
		})
	}
}

func TestAggregationValidator(t *testing.T) {
	v := MustValidator("attackers", AggregationSchema("attackers"))

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"aggregations":{"attackers":{"buckets":[{"key":"10.0.0.5","doc_count":17}]}}}`, false},
		{"empty buckets", `{"aggregations":{"attackers":{"buckets":[]}}}`, false},
		{"numeric key", `{"aggregations":{"attackers":{"buckets":[{"key":12,"doc_count":3}]}}}`, false},
		{"with key_as_string", `{"aggregations":{"attackers":{"buckets":[{"key_as_string":"x","key":1,"doc_count":3}]}}}`, false},
		{"no aggregations", `{"hits":{"total":{"value":0}}}`, true},
		{"wrong agg name", `{"aggregations":{"severity":{"buckets":[]}}}`, true},
		{"buckets not array", `{"aggregations":{"attackers":{"buckets":{}}}}`, true},
		{"bucket without doc_count", `{"aggregations":{"attackers":{"buckets":[{"key":"a"}]}}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.body))
			if tt.wantErr {
				assert.True(t, apperrors.IsShape(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator("bad", map[string]interface{}{"type": 12})
	assert.Error(t, err)
}
