package contracts

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuarterLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    QuarterLabel
		wantErr bool
	}{
		{name: "march", input: "2020-Mar", want: QuarterLabel{2020, Mar}},
		{name: "lower case month", input: "2021-dec", want: QuarterLabel{2021, Dec}},
		{name: "not a quarter end", input: "2020-Feb", wantErr: true},
		{name: "two digit year", input: "20-Mar", wantErr: true},
		{name: "garbage", input: "Q1 FY21", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuarterLabel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidQuarterLabel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestQuarterFromDateEnd(t *testing.T) {
	q, err := QuarterFromDateEnd("31-Mar-20")
	require.NoError(t, err)
	assert.Equal(t, "2020-Mar", q.String())

	q, err = QuarterFromDateEnd("30-Sep-2021")
	require.NoError(t, err)
	assert.Equal(t, "2021-Sep", q.String())

	_, err = QuarterFromDateEnd("31-Jan-21")
	assert.ErrorIs(t, err, ErrInvalidQuarterLabel)

	_, err = QuarterFromDateEnd("2021-03-31")
	assert.ErrorIs(t, err, ErrInvalidQuarterLabel)
}

func TestQuarterLabel_Ordering(t *testing.T) {
	labels := []QuarterLabel{
		MustQuarter("2021-Mar"),
		MustQuarter("2020-Dec"),
		MustQuarter("2020-Jun"),
		MustQuarter("2020-Sep"),
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i].Before(labels[j]) })

	got := make([]string, len(labels))
	for i, l := range labels {
		got[i] = l.String()
	}
	assert.Equal(t, []string{"2020-Jun", "2020-Sep", "2020-Dec", "2021-Mar"}, got)

	assert.Equal(t, 0, MustQuarter("2020-Jun").Compare(QuarterLabel{2020, Jun}))
	assert.Equal(t, "2019-Jun", MustQuarter("2020-Jun").YearAgo().String())
}

func TestQuarterLabel_JSON(t *testing.T) {
	rec := CanonicalQuarterRecord{
		Quarter: MustQuarter("2020-Jun"),
		Sales:   Float(17842),
		EPS:     Float(10.8),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Quarter":"2020-Jun"`)

	var decoded CanonicalQuarterRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec.Quarter, decoded.Quarter)
	assert.Equal(t, 17842.0, *decoded.Sales)
}

func TestStatementLabel(t *testing.T) {
	q := MustQuarter("2022-Dec")
	explicit := QuarterStatement{Quarter: &q, Meta: &StatementMeta{DateEnd: "31-Mar-20"}}
	label, err := explicit.Label()
	require.NoError(t, err)
	assert.Equal(t, q, label)

	inferred := QuarterStatement{Meta: &StatementMeta{DateEnd: "30-Jun-2021"}}
	label, err = inferred.Label()
	require.NoError(t, err)
	assert.Equal(t, "2021-Jun", label.String())

	_, err = QuarterStatement{}.Label()
	assert.ErrorIs(t, err, ErrInvalidQuarterLabel)
}

func TestEvaluatedQuarter_NullBlocks(t *testing.T) {
	out := EvaluatedQuarter{}
	out.Quarter = MustQuarter("2020-Mar")

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	perf := m["performance"].(map[string]interface{})
	assert.Nil(t, perf["yoy"])
	assert.Nil(t, perf["qoq"])
	assert.Contains(t, m, "sales_qoq_pct")
	assert.Nil(t, m["sales_qoq_pct"])
	assert.Nil(t, m["currentDateClosePrice"])
}

func TestFinite(t *testing.T) {
	_, ok := Finite(nil)
	assert.False(t, ok)

	v, ok := Finite(Float(3.5))
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
}
